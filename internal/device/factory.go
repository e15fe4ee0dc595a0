package device

import (
	"fmt"

	"parley-go/internal/config"
	"parley-go/internal/parley"
)

// NewRecorderFromConfig creates the microphone named by cfg.Recorder.
func NewRecorderFromConfig(cfg config.DeviceConfig, storage parley.AudioStorage, idgen parley.IDGenerator, logger parley.Logger) (parley.Recorder, error) {
	switch cfg.Recorder {
	case "malgo", "":
		return NewMalgoRecorder(cfg.SampleRate, storage, idgen, logger), nil
	case "file":
		if cfg.InputFile == "" {
			return nil, fmt.Errorf("file recorder requires input_file to be set")
		}
		return NewFileRecorder(cfg.InputFile, storage, idgen), nil
	default:
		return nil, fmt.Errorf("unknown recorder: %s", cfg.Recorder)
	}
}

// NewPlayerFromConfig returns nil for player "none".
func NewPlayerFromConfig(cfg config.DeviceConfig) (parley.Player, error) {
	switch cfg.Player {
	case "oto", "":
		return NewOtoPlayer(cfg.SampleRate), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown player: %s", cfg.Player)
	}
}

// NewSpeakerFromConfig returns nil when no speech command is configured.
func NewSpeakerFromConfig(cfg config.DeviceConfig) (parley.Speaker, error) {
	if len(cfg.SpeechCmd) == 0 {
		return nil, nil
	}
	s, err := NewExecSpeaker(cfg.SpeechCmd)
	if err != nil {
		return nil, err
	}
	return s, nil
}
