package device

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"parley-go/internal/parley"
)

// MalgoRecorder captures mono 16-bit audio from the default input device and
// stores each recording as FLAC.
type MalgoRecorder struct {
	sampleRate int
	storage    parley.AudioStorage
	idgen      parley.IDGenerator
	logger     parley.Logger
}

var _ parley.Recorder = (*MalgoRecorder)(nil)

func NewMalgoRecorder(sampleRate int, storage parley.AudioStorage, idgen parley.IDGenerator, logger parley.Logger) *MalgoRecorder {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &MalgoRecorder{sampleRate: sampleRate, storage: storage, idgen: idgen, logger: logger}
}

// RequestPermission reports whether any capture device can be enumerated.
// Desktop hosts have no separate consent step; an empty device list is
// treated as denied.
func (r *MalgoRecorder) RequestPermission(_ context.Context) (bool, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return false, fmt.Errorf("initializing audio context: %w", err)
	}
	defer func() {
		mctx.Uninit()
		mctx.Free()
	}()

	devices, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return false, fmt.Errorf("listing capture devices: %w", err)
	}
	return len(devices) > 0, nil
}

// Start opens the default capture device and begins buffering samples.
func (r *MalgoRecorder) Start(_ context.Context) (parley.Capture, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	c := &malgoCapture{recorder: r, mctx: mctx}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(r.sampleRate)

	dev, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, data []byte, _ uint32) {
			c.append(data)
		},
	})
	if err != nil {
		c.freeContext()
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}
	c.device = dev

	if err := dev.Start(); err != nil {
		dev.Uninit()
		c.freeContext()
		return nil, fmt.Errorf("starting capture device: %w", err)
	}
	r.logger.Debug("capture device started", "sample_rate", r.sampleRate)
	return c, nil
}

type malgoCapture struct {
	recorder *MalgoRecorder
	mctx     *malgo.AllocatedContext
	device   *malgo.Device

	mu      sync.Mutex
	samples []int16
}

func (c *malgoCapture) append(data []byte) {
	s := samplesFromBytes(data)
	c.mu.Lock()
	c.samples = append(c.samples, s...)
	c.mu.Unlock()
}

// Stop releases the device, encodes what was captured and stores it.
func (c *malgoCapture) Stop(ctx context.Context) (parley.Recording, error) {
	c.device.Stop()
	c.device.Uninit()
	c.freeContext()

	c.mu.Lock()
	pcm := PCM{SampleRate: c.recorder.sampleRate, Channels: 1, Samples: c.samples}
	c.samples = nil
	c.mu.Unlock()

	data, err := EncodeFLAC(pcm)
	if err != nil {
		return parley.Recording{}, err
	}

	name := "rec-" + c.recorder.idgen.New() + ".flac"
	uri, err := c.recorder.storage.Put(ctx, name, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return parley.Recording{}, fmt.Errorf("storing recording: %w", err)
	}
	return parley.Recording{URI: uri, DurationMs: pcm.DurationMs()}, nil
}

func (c *malgoCapture) freeContext() {
	c.mctx.Uninit()
	c.mctx.Free()
}
