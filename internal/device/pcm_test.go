package device

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

// wavBytes builds a 16-bit PCM WAV file.
func wavBytes(rate, channels int, samples []int16) []byte {
	var data bytes.Buffer
	binary.Write(&data, binary.LittleEndian, samples)

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+data.Len()))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(data.Len()))
	b.Write(data.Bytes())
	return b.Bytes()
}

func TestPCM_DurationMs(t *testing.T) {
	tests := []struct {
		name string
		pcm  PCM
		want int64
	}{
		{"mono 4.2s", PCM{SampleRate: 1000, Channels: 1, Samples: make([]int16, 4200)}, 4200},
		{"stereo 1s", PCM{SampleRate: 100, Channels: 2, Samples: make([]int16, 200)}, 1000},
		{"empty", PCM{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pcm.DurationMs(); got != tt.want {
				t.Errorf("DurationMs() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPCM_Convert(t *testing.T) {
	stereo := PCM{SampleRate: 8, Channels: 2, Samples: []int16{10, 30, 100, 300, -10, -30, 0, 0}}

	got := stereo.Convert(4, 1)
	want := []int16{20, -20}
	if got.SampleRate != 4 || got.Channels != 1 {
		t.Fatalf("Convert() format = %d Hz %d ch, want 4 Hz 1 ch", got.SampleRate, got.Channels)
	}
	if len(got.Samples) != len(want) {
		t.Fatalf("Convert() samples = %v, want %v", got.Samples, want)
	}
	for i := range want {
		if got.Samples[i] != want[i] {
			t.Errorf("Convert() samples = %v, want %v", got.Samples, want)
			break
		}
	}
}

func TestPCM_Bytes(t *testing.T) {
	p := PCM{SampleRate: 1, Channels: 1, Samples: []int16{1, -1}}
	got := p.Bytes()
	want := []byte{0x01, 0x00, 0xff, 0xff}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
	if back := samplesFromBytes(got); back[0] != 1 || back[1] != -1 {
		t.Errorf("samplesFromBytes() = %v, want [1 -1]", back)
	}
}

func TestDecodeWAV(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767, -32768, 5}
	p, err := DecodeWAV(bytes.NewReader(wavBytes(16000, 2, samples)))
	if err != nil {
		t.Fatalf("DecodeWAV() error = %v", err)
	}
	if p.SampleRate != 16000 || p.Channels != 2 {
		t.Errorf("format = %d Hz %d ch, want 16000 Hz 2 ch", p.SampleRate, p.Channels)
	}
	if len(p.Samples) != len(samples) || p.Samples[3] != 32767 || p.Samples[4] != -32768 {
		t.Errorf("Samples = %v, want %v", p.Samples, samples)
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	if _, err := DecodeWAV(strings.NewReader("not a wav file at all")); err == nil {
		t.Error("DecodeWAV() expected error for non-wav input")
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode(strings.NewReader(""), "audio/m4a")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}
}
