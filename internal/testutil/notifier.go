package testutil

import (
	"sync"

	"parley-go/internal/parley"
)

// RecordingNotifier collects every notice it receives.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []parley.Notice
}

var _ parley.Notifier = (*RecordingNotifier)(nil)

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(notice parley.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

// Notices returns a copy of the notices received so far.
func (n *RecordingNotifier) Notices() []parley.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]parley.Notice(nil), n.notices...)
}

// Texts returns the text of every notice in order.
func (n *RecordingNotifier) Texts() []string {
	notices := n.Notices()
	out := make([]string, len(notices))
	for i, nt := range notices {
		out[i] = nt.Text
	}
	return out
}

// Last returns the most recent notice, or false if none was received.
func (n *RecordingNotifier) Last() (parley.Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return parley.Notice{}, false
	}
	return n.notices[len(n.notices)-1], true
}

// Count returns how many notices of kind were received.
func (n *RecordingNotifier) Count(kind parley.NoticeKind) int {
	count := 0
	for _, nt := range n.Notices() {
		if nt.Kind == kind {
			count++
		}
	}
	return count
}
