package parley

import "errors"

// Failure kinds surfaced to the user. Collaborator errors are wrapped with
// one of these and the cause, so both are reachable through errors.Is.
var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrTransport        = errors.New("translation service failed")
	ErrEmptyResult      = errors.New("no translation available")
	ErrStorage          = errors.New("storage failure")
)

// Guard errors returned before any collaborator is called.
var (
	ErrEmptyInput      = errors.New("input is empty")
	ErrBusy            = errors.New("a translation is already in progress")
	ErrRecordingActive = errors.New("a recording is already in progress")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrNoAudio         = errors.New("message has no audio")
	ErrMessageNotFound = errors.New("message not found")
)
