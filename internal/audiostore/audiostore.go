// Package audiostore keeps recorded audio and addresses each recording by URI.
package audiostore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when opening a recording that does not exist.
var ErrNotFound = errors.New("recording not found")

// validName rejects names that would escape the storage namespace.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid recording name: %q", name)
	}
	return nil
}

// trimScheme strips scheme from uri, reporting whether it was present.
func trimScheme(uri, scheme string) (string, bool) {
	uri = strings.TrimSpace(uri)
	rest, ok := strings.CutPrefix(uri, scheme+"://")
	return rest, ok
}

