// Package device provides the microphone, playback and speech collaborators.
package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupportedFormat is returned when a recording cannot be decoded locally.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// PCM is interleaved signed 16-bit audio.
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Frames returns the number of samples per channel.
func (p PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// DurationMs returns the playing time in milliseconds.
func (p PCM) DurationMs() int64 {
	if p.SampleRate == 0 {
		return 0
	}
	return int64(p.Frames()) * 1000 / int64(p.SampleRate)
}

// Bytes encodes the samples as little-endian int16.
func (p PCM) Bytes() []byte {
	out := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Convert downmixes to channels and resamples to rate by nearest neighbour.
func (p PCM) Convert(rate, channels int) PCM {
	if p.SampleRate == rate && p.Channels == channels {
		return p
	}

	frames := p.Frames()
	mono := make([]int32, frames)
	for f := 0; f < frames; f++ {
		var sum int32
		for c := 0; c < p.Channels; c++ {
			sum += int32(p.Samples[f*p.Channels+c])
		}
		mono[f] = sum / int32(p.Channels)
	}

	outFrames := 0
	if p.SampleRate > 0 {
		outFrames = int(int64(frames) * int64(rate) / int64(p.SampleRate))
	}
	out := make([]int16, 0, outFrames*channels)
	for f := 0; f < outFrames; f++ {
		src := int(int64(f) * int64(p.SampleRate) / int64(rate))
		s := int16(mono[src])
		for c := 0; c < channels; c++ {
			out = append(out, s)
		}
	}
	return PCM{SampleRate: rate, Channels: channels, Samples: out}
}

// samplesFromBytes decodes little-endian int16 samples as delivered by the
// capture callback.
func samplesFromBytes(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

// Decode reads a FLAC or WAV recording into PCM.
func Decode(r io.Reader, mimeType string) (PCM, error) {
	switch strings.ToLower(mimeType) {
	case "audio/flac", "audio/x-flac":
		return DecodeFLAC(r)
	case "audio/wav", "audio/x-wav", "audio/wave":
		return DecodeWAV(r)
	default:
		return PCM{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
}
