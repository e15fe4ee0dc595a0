package device

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"parley-go/internal/parley"
)

// ExecSpeaker reads text aloud by running an external synthesizer such as
// espeak-ng or say. "{text}" and "{lang}" in the arguments are replaced by
// the text and the language code.
type ExecSpeaker struct {
	argv []string
}

var _ parley.Speaker = (*ExecSpeaker)(nil)

func NewExecSpeaker(argv []string) (*ExecSpeaker, error) {
	if len(argv) == 0 {
		return nil, errors.New("speech command is empty")
	}
	return &ExecSpeaker{argv: append([]string(nil), argv...)}, nil
}

func (s *ExecSpeaker) Speak(ctx context.Context, text string, languageCode string) error {
	args := expandArgs(s.argv, text, languageCode)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func expandArgs(argv []string, text, lang string) []string {
	r := strings.NewReplacer("{text}", text, "{lang}", lang)
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = r.Replace(a)
	}
	return out
}
