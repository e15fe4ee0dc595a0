package parley

import (
	"fmt"
	"sync"
)

// Observer receives the full message log after every committed mutation.
// The slice is a copy and may be retained.
type Observer func(messages []Message)

// MessageStore is the ordered, durable conversation log. It is the only
// owner of message state; every mutation is written through to the Database.
type MessageStore struct {
	db     Database
	logger Logger

	mu        sync.Mutex
	messages  []Message
	ids       map[string]struct{}
	observers map[int]Observer
	nextObs   int
}

// NewMessageStore creates an empty store backed by db. Call Load to hydrate it.
func NewMessageStore(db Database, logger Logger) *MessageStore {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &MessageStore{
		db:        db,
		logger:    logger,
		ids:       make(map[string]struct{}),
		observers: make(map[int]Observer),
	}
}

// Load replaces the in-memory log with what the database holds. Unreadable
// or corrupt storage yields an empty log; Load never fails.
func (s *MessageStore) Load() []Message {
	stored, err := s.db.ListMessages()
	if err != nil {
		s.logger.Warn("loading messages failed, starting with an empty log", "error", err)
		stored = nil
	}

	s.mu.Lock()
	s.messages = make([]Message, 0, len(stored))
	s.ids = make(map[string]struct{}, len(stored))
	for _, m := range stored {
		if err := m.Validate(); err != nil {
			s.logger.Warn("skipping invalid stored message", "error", err)
			continue
		}
		if _, dup := s.ids[m.ID]; dup {
			s.logger.Warn("skipping duplicate stored message", "id", m.ID)
			continue
		}
		s.ids[m.ID] = struct{}{}
		s.messages = append(s.messages, m.clone())
	}
	snapshot, observers := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("messages loaded", "count", len(snapshot))
	notifyObservers(observers, snapshot)
	return cloneMessages(snapshot)
}

// Append adds msg to the end of the log. The message stays in the log even
// if it cannot be persisted; in that case the returned error wraps ErrStorage.
// CreatedAt is stored in UTC, which is also how every backend reads it back.
func (s *MessageStore) Append(msg Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	msg.CreatedAt = msg.CreatedAt.UTC()

	s.mu.Lock()
	if _, dup := s.ids[msg.ID]; dup {
		s.mu.Unlock()
		return fmt.Errorf("appending message: id %s already exists", msg.ID)
	}
	s.ids[msg.ID] = struct{}{}
	s.messages = append(s.messages, msg.clone())
	// Persist under the lock so the stored order matches the in-memory order.
	persistErr := s.db.InsertMessage(msg.clone())
	snapshot, observers := s.snapshotLocked()
	s.mu.Unlock()

	notifyObservers(observers, snapshot)

	if persistErr != nil {
		s.logger.Error("persisting message failed", "id", msg.ID, "error", persistErr)
		return fmt.Errorf("%w: persisting message %s: %w", ErrStorage, msg.ID, persistErr)
	}
	s.logger.Debug("message appended", "id", msg.ID)
	return nil
}

// Remove deletes every message whose id is in ids and keeps the relative
// order of the rest. Unknown ids are ignored, so Remove is idempotent.
func (s *MessageStore) Remove(ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	kept := s.messages[:0:0]
	var removed []string
	for _, m := range s.messages {
		if _, ok := drop[m.ID]; ok {
			removed = append(removed, m.ID)
			delete(s.ids, m.ID)
			continue
		}
		kept = append(kept, m)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.messages = kept
	persistErr := s.db.DeleteMessages(removed)
	snapshot, observers := s.snapshotLocked()
	s.mu.Unlock()

	notifyObservers(observers, snapshot)

	if persistErr != nil {
		s.logger.Error("persisting message removal failed", "count", len(removed), "error", persistErr)
		return fmt.Errorf("%w: removing messages: %w", ErrStorage, persistErr)
	}
	s.logger.Info("messages removed", "count", len(removed))
	return nil
}

// Messages returns a copy of the log, oldest first.
func (s *MessageStore) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.messages)
}

// Get returns the message with the given id.
func (s *MessageStore) Get(id string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return Message{}, false
	}
	for _, m := range s.messages {
		if m.ID == id {
			return m.clone(), true
		}
	}
	return Message{}, false
}

// Len returns the number of messages in the log.
func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Subscribe registers fn to be called after every mutation. The returned
// function unregisters it.
func (s *MessageStore) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// snapshotLocked copies the log and the observer list. Callers must hold s.mu.
func (s *MessageStore) snapshotLocked() ([]Message, []Observer) {
	snapshot := cloneMessages(s.messages)
	observers := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	return snapshot, observers
}

func notifyObservers(observers []Observer, snapshot []Message) {
	for _, fn := range observers {
		fn(cloneMessages(snapshot))
	}
}
