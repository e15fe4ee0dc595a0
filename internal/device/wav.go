package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DecodeWAV reads an uncompressed 16-bit PCM RIFF/WAVE file.
func DecodeWAV(r io.Reader) (PCM, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return PCM{}, fmt.Errorf("reading wav header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return PCM{}, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}

	var p PCM
	haveFormat := false
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return PCM{}, fmt.Errorf("wav file has no data chunk")
			}
			return PCM{}, fmt.Errorf("reading wav chunk: %w", err)
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return PCM{}, fmt.Errorf("reading wav format: %w", err)
			}
			if len(body) < 16 {
				return PCM{}, fmt.Errorf("wav format chunk too short")
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			bits := binary.LittleEndian.Uint16(body[14:16])
			if format != 1 || bits != 16 {
				return PCM{}, fmt.Errorf("%w: wav format %d with %d bits", ErrUnsupportedFormat, format, bits)
			}
			p.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			p.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			haveFormat = true
		case "data":
			if !haveFormat {
				return PCM{}, fmt.Errorf("wav data chunk before format chunk")
			}
			data := make([]byte, size)
			n, err := io.ReadFull(r, data)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return PCM{}, fmt.Errorf("reading wav data: %w", err)
			}
			p.Samples = samplesFromBytes(data[:n])
			return p, nil
		default:
			if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
				return PCM{}, fmt.Errorf("skipping wav chunk %q: %w", id, err)
			}
		}
	}
}
