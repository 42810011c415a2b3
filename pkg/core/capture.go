package core

import "time"

// CaptureKind distinguishes the payload carried by a capture.
type CaptureKind string

const (
	CaptureImage CaptureKind = "image"
	CaptureText  CaptureKind = "text"
)

// Capture is a raw observation emitted by a source before it becomes a note.
// Image captures carry a path to the file on disk; text captures carry the
// buffer content directly.
type Capture struct {
	ID     string
	Kind   CaptureKind
	Source SourceKind
	Path   string // image file path (empty for text captures)
	Text   string // raw text (empty for image captures)
	Origin string // original filename or buffer reference
	Time   time.Time
}

// String implements fmt.Stringer for event/log payloads.
func (c Capture) String() string {
	return string(c.Source) + ":" + c.Origin
}
