package parley

import (
	"fmt"
	"strings"
)

// Language is a translation target, identified by its ISO 639-1 code.
type Language string

const (
	Spanish Language = "es"
	Italian Language = "it"
	French  Language = "fr"
)

// English is the fixed target for audio translation. It is not a selectable
// text target.
const English Language = "en"

var languageNames = map[Language]string{
	Spanish: "Spanish",
	Italian: "Italian",
	French:  "French",
}

// Languages returns the selectable targets in display order.
func Languages() []Language {
	return []Language{Spanish, Italian, French}
}

// Code returns the ISO 639-1 code.
func (l Language) Code() string { return string(l) }

// Name returns the human-readable name sent to the translator.
func (l Language) Name() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	if l == English {
		return "English"
	}
	return string(l)
}

// Valid reports whether l is one of the selectable targets.
func (l Language) Valid() bool {
	_, ok := languageNames[l]
	return ok
}

func (l Language) String() string { return l.Name() }

// ParseLanguage accepts a code ("es") or a name ("Spanish"), case-insensitive.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range languageNames {
		if s == string(l) || s == strings.ToLower(name) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}
