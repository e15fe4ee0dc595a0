package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"parley-go/internal/parley"
)

// OtoPlayer plays FLAC and WAV recordings on the default output device.
// A process can hold only one oto context, so it is created on first use at
// a fixed rate and every recording is converted to it.
type OtoPlayer struct {
	sampleRate int

	once    sync.Once
	ctx     *oto.Context
	initErr error
}

var _ parley.Player = (*OtoPlayer)(nil)

func NewOtoPlayer(sampleRate int) *OtoPlayer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &OtoPlayer{sampleRate: sampleRate}
}

// Play decodes audio and blocks until it has finished or ctx is done.
func (p *OtoPlayer) Play(ctx context.Context, audio io.Reader, mimeType string) error {
	pcm, err := Decode(audio, mimeType)
	if err != nil {
		return err
	}

	p.once.Do(p.init)
	if p.initErr != nil {
		return p.initErr
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm.Convert(p.sampleRate, 1).Bytes()))
	defer player.Close()
	player.Play()

	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}

func (p *OtoPlayer) init() {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   p.sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		p.initErr = fmt.Errorf("initializing audio output: %w", err)
		return
	}
	<-ready
	p.ctx = ctx
}
