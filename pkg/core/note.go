package core

import (
	"fmt"
	"strings"
	"time"
)

// Metadata represents the flexible key-value pairs associated with a note.
type Metadata map[string]any

// SourceKind identifies where a capture originated.
type SourceKind string

const (
	SourceScreenshot SourceKind = "screenshot"
	SourceClipboard  SourceKind = "clipboard"
)

// Note is the central entity of the domain.
// It represents a piece of OCR-extracted (or clipboard-captured) text
// together with the provenance of the capture it came from.
type Note struct {
	ID        string
	Source    SourceKind
	Origin    string // original filename or buffer reference
	Hash      string // hex SHA-256 of the capture payload
	Content   string
	CreatedAt time.Time
	Metadata  Metadata
}

// NoteID builds the canonical note identifier for a capture taken at t.
// Format: <compact UTC timestamp>__<sanitized stem>. The timestamp avoids
// colons and plus signs so the ID is safe as a filename everywhere.
func NoteID(t time.Time, stem string) string {
	t = t.UTC()
	ts := fmt.Sprintf("%s_%06dZ", t.Format("20060102T150405"), t.Nanosecond()/1000)
	stem = strings.ReplaceAll(strings.TrimSpace(stem), " ", "_")
	if stem == "" {
		stem = "capture"
	}
	return ts + "__" + stem
}
