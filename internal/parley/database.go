package parley

// Database persists the message log. Implementations must return messages in
// insertion order and must treat deleting an unknown id as a no-op.
type Database interface {
	// ListMessages returns every stored message, oldest first.
	ListMessages() ([]Message, error)

	// InsertMessage appends a message to the end of the log.
	InsertMessage(msg Message) error

	// DeleteMessages removes the messages with the given ids.
	DeleteMessages(ids []string) error

	// Close releases the underlying connection.
	Close() error
}
