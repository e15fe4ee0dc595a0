package app

import (
	"fmt"
	"io"
	"sync"

	"parley-go/internal/parley"
)

// consoleNotifier prints notices as single lines. Failures are prefixed with
// their kind so they stand out from informational notices.
type consoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

var _ parley.Notifier = (*consoleNotifier)(nil)

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

func (n *consoleNotifier) Notify(notice parley.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if notice.Kind.IsFailure() {
		fmt.Fprintf(n.w, "! [%s] %s\n", notice.Kind, notice.Text)
		return
	}
	fmt.Fprintf(n.w, "* %s\n", notice.Text)
}
