package parley

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RecordingState is a phase of the audio capture lifecycle.
type RecordingState int

const (
	StateIdle RecordingState = iota
	StateRecording
	StateFinalizing
	StateFailed
)

func (s RecordingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("RecordingState(%d)", int(s))
	}
}

// RecordingController drives a single capture session from the first
// gesture to an appended audio message. Start and stop are safe to call
// from rapid, repeated gestures.
type RecordingController struct {
	recorder Recorder
	pipeline *Pipeline
	notifier Notifier
	clock    Clock
	logger   Logger

	mu            sync.Mutex
	state         RecordingState
	starting      bool
	stopRequested bool
	permitted     bool
	startedAt     time.Time
	capture       Capture
}

// NewRecordingController creates a controller in the Idle state.
func NewRecordingController(recorder Recorder, pipeline *Pipeline, notifier Notifier, clock Clock, logger Logger) *RecordingController {
	return &RecordingController{
		recorder: recorder,
		pipeline: pipeline,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// State returns the current phase.
func (c *RecordingController) State() RecordingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartedAt returns when the active capture began.
func (c *RecordingController) StartedAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRecording {
		return time.Time{}, false
	}
	return c.startedAt, true
}

// StartRecording asks for microphone permission if needed and begins a
// capture. A Failed controller is reset to Idle first. Starting while a
// capture is active or being set up returns ErrRecordingActive.
//
// If StopRecording was called while the capture was being set up, the new
// capture is finalized right away and its pipeline error, if any, is returned.
func (c *RecordingController) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateFailed {
		c.state = StateIdle
	}
	if c.state != StateIdle || c.starting {
		c.mu.Unlock()
		return ErrRecordingActive
	}
	c.starting = true
	c.stopRequested = false
	permitted := c.permitted
	c.mu.Unlock()

	if !permitted {
		granted, err := c.recorder.RequestPermission(ctx)
		if err != nil {
			c.fail(textRecordingStartFailed)
			c.logger.Warn("requesting microphone permission failed", "error", err)
			return fmt.Errorf("requesting microphone permission: %w", err)
		}
		if !granted {
			c.mu.Lock()
			c.starting = false
			c.stopRequested = false
			c.mu.Unlock()
			c.notifier.Notify(Notice{Kind: NoticePermissionDenied, Text: textPermissionDenied})
			c.logger.Warn("microphone permission denied")
			return ErrPermissionDenied
		}
		c.mu.Lock()
		c.permitted = true
		c.mu.Unlock()
	}

	capture, err := c.recorder.Start(ctx)
	if err != nil {
		c.fail(textRecordingStartFailed)
		c.logger.Warn("starting capture failed", "error", err)
		return fmt.Errorf("starting capture: %w", err)
	}

	c.mu.Lock()
	c.starting = false
	c.state = StateRecording
	c.startedAt = c.clock.Now()
	c.capture = capture
	stopNow := c.stopRequested
	c.stopRequested = false
	c.mu.Unlock()

	c.notifier.Notify(Notice{Kind: NoticeInfo, Text: textRecordingStarted})
	c.logger.Info("recording started")

	if stopNow {
		c.logger.Info("stop requested during start, finalizing")
		if _, err := c.StopRecording(ctx); err != nil {
			return err
		}
	}
	return nil
}

// StopRecording ends the active capture and sends the recording through the
// pipeline. Outside the Recording state it does nothing and returns (nil, nil).
// While a start is in progress the stop is remembered and carried out by
// StartRecording once the capture exists.
// A failed pipeline call leaves the recorded file in storage.
func (c *RecordingController) StopRecording(ctx context.Context) (*Message, error) {
	c.mu.Lock()
	if c.starting {
		c.stopRequested = true
		c.mu.Unlock()
		c.logger.Debug("stop deferred until capture starts")
		return nil, nil
	}
	if c.state != StateRecording {
		c.mu.Unlock()
		return nil, nil
	}
	capture := c.capture
	startedAt := c.startedAt
	c.capture = nil
	c.state = StateFinalizing
	c.mu.Unlock()

	rec, err := capture.Stop(ctx)
	if err != nil {
		c.fail(textRecordingStopFailed)
		c.logger.Warn("stopping capture failed", "error", err)
		return nil, fmt.Errorf("stopping capture: %w", err)
	}
	c.logger.Info("recording stopped",
		"uri", rec.URI,
		"duration_ms", rec.DurationMs,
		"elapsed", c.clock.Now().Sub(startedAt).String())

	msg, err := c.pipeline.SendAudio(ctx, rec.URI, rec.DurationMs)

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("recording left without a message", "uri", rec.URI, "error", err)
		return nil, err
	}
	return msg, nil
}

// fail moves the controller to Failed and surfaces text. The next
// StartRecording resets it.
func (c *RecordingController) fail(text string) {
	c.mu.Lock()
	c.starting = false
	c.stopRequested = false
	c.capture = nil
	c.state = StateFailed
	c.mu.Unlock()
	c.notifier.Notify(Notice{Kind: NoticeDevice, Text: text})
}
