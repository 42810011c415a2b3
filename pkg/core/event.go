package core

// EventType represents the outcome of processing a capture.
type EventType string

const (
	EventStored  EventType = "STORED"
	EventSkipped EventType = "SKIPPED"
	EventFailed  EventType = "FAILED"
)

// Event represents a change in the note store.
type Event struct {
	Type      EventType
	NoteID    string
	Hash      string
	Source    SourceKind
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer so events can feed generic event sinks.
func (e Event) String() string {
	return string(e.Type) + " " + e.NoteID
}
