package device

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	flacBlockSize     = 4096
	flacBitsPerSample = 16
)

// EncodeFLAC encodes mono PCM as a FLAC stream with verbatim subframes.
func EncodeFLAC(p PCM) ([]byte, error) {
	if p.Channels != 1 {
		return nil, fmt.Errorf("flac encoding supports mono only, got %d channels", p.Channels)
	}

	var buf bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(p.SampleRate),
		NChannels:     1,
		BitsPerSample: flacBitsPerSample,
		NSamples:      uint64(len(p.Samples)),
	}
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}

	for start := 0; start < len(p.Samples); start += flacBlockSize {
		end := min(start+flacBlockSize, len(p.Samples))
		block := make([]int32, end-start)
		for i, s := range p.Samples[start:end] {
			block[i] = int32(s)
		}

		f := &frame.Frame{
			Header: frame.Header{
				BlockSize:     uint16(len(block)),
				SampleRate:    uint32(p.SampleRate),
				Channels:      frame.ChannelsMono,
				BitsPerSample: flacBitsPerSample,
			},
			Subframes: []*frame.Subframe{{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   block,
				NSamples:  len(block),
			}},
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("writing flac frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing flac encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeFLAC reads a whole FLAC stream, scaling samples to 16 bits.
func DecodeFLAC(r io.Reader) (PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return PCM{}, fmt.Errorf("opening flac stream: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	shift := int(stream.Info.BitsPerSample) - 16
	p := PCM{SampleRate: int(stream.Info.SampleRate), Channels: channels}

	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PCM{}, fmt.Errorf("parsing flac frame: %w", err)
		}
		for i := 0; i < int(f.BlockSize); i++ {
			for c := 0; c < channels; c++ {
				p.Samples = append(p.Samples, scaleSample(f.Subframes[c].Samples[i], shift))
			}
		}
	}
	return p, nil
}

func scaleSample(s int32, shift int) int16 {
	switch {
	case shift > 0:
		return int16(s >> shift)
	case shift < 0:
		return int16(s << -shift)
	default:
		return int16(s)
	}
}
