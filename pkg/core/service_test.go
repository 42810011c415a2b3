package core_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sgags-official/envisage/pkg/core"
)

// MockRepository implements core.Repository in memory.
// It deliberately does NOT implement core.Syncable to test fallback errors.
type MockRepository struct {
	notes map[string]core.Note
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		notes: make(map[string]core.Note),
	}
}

func (m *MockRepository) Save(ctx context.Context, n core.Note) error {
	m.notes[n.ID] = n
	return nil
}

func (m *MockRepository) Get(ctx context.Context, id string) (core.Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return core.Note{}, core.ErrNotFound
	}
	return n, nil
}

func (m *MockRepository) List(ctx context.Context) ([]core.Note, error) {
	var notes []core.Note
	for _, n := range m.notes {
		notes = append(notes, n)
	}
	// Sort for deterministic tests
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.notes[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *MockRepository) Initialize(ctx context.Context) error { return nil }

// MockDedup implements core.Deduplicator in memory.
type MockDedup struct {
	hashes map[string]string
}

func NewMockDedup() *MockDedup {
	return &MockDedup{hashes: make(map[string]string)}
}

func (m *MockDedup) Seen(ctx context.Context, hash string) (string, bool, error) {
	id, ok := m.hashes[hash]
	return id, ok, nil
}

func (m *MockDedup) Remember(ctx context.Context, hash, noteID string) error {
	m.hashes[hash] = noteID
	return nil
}

// MockExtractor returns canned text or a canned error.
type MockExtractor struct {
	text string
	err  error
}

func (m *MockExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	return m.text, m.err
}

func newTestService(t *testing.T, cfg core.ServiceConfig) *core.Service {
	t.Helper()
	svc, err := core.NewService(cfg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func writeTempImage(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write temp image: %v", err)
	}
	return path
}

func TestService_IngestText(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(t, core.ServiceConfig{
		Repository: repo,
		Dedup:      NewMockDedup(),
	})
	ctx := context.TODO()

	n, err := svc.Ingest(ctx, core.Capture{
		ID:     "c1",
		Kind:   core.CaptureText,
		Source: core.SourceClipboard,
		Text:   "hello from the clipboard",
		Origin: "clipboard buffer",
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if n.Content != "hello from the clipboard" {
		t.Errorf("unexpected content: %q", n.Content)
	}
	if n.Source != core.SourceClipboard {
		t.Errorf("unexpected source: %s", n.Source)
	}
	if n.Hash == "" {
		t.Error("expected a content hash")
	}
	if !strings.HasSuffix(n.ID, "__clipboard") {
		t.Errorf("unexpected note ID: %s", n.ID)
	}
	if n.Metadata["topics"] != "general" {
		t.Errorf("expected default topics, got %v", n.Metadata["topics"])
	}
	if n.Metadata["version"] != "1.0" {
		t.Errorf("expected version 1.0, got %v", n.Metadata["version"])
	}
	if _, ok := n.Metadata["ocr_engine"]; ok {
		t.Error("text capture must not record an OCR engine")
	}

	if _, err := repo.Get(ctx, n.ID); err != nil {
		t.Errorf("note not persisted: %v", err)
	}
}

func TestService_IngestBlankText(t *testing.T) {
	svc := newTestService(t, core.ServiceConfig{Repository: NewMockRepository()})

	n, err := svc.Ingest(context.TODO(), core.Capture{
		Kind:   core.CaptureText,
		Source: core.SourceClipboard,
		Text:   "   \n ",
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if n.Content != "(no text)" {
		t.Errorf("expected placeholder body, got %q", n.Content)
	}
}

func TestService_IngestImage(t *testing.T) {
	path := writeTempImage(t, []byte("fake image bytes"))

	repo := NewMockRepository()
	svc := newTestService(t, core.ServiceConfig{
		Repository: repo,
		Extractor:  &MockExtractor{text: "recognized text"},
		Engine:     "tesseract",
	})

	n, err := svc.Ingest(context.TODO(), core.Capture{
		Kind:   core.CaptureImage,
		Source: core.SourceScreenshot,
		Path:   path,
		Origin: "shot.png",
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if n.Content != "recognized text" {
		t.Errorf("unexpected content: %q", n.Content)
	}
	if n.Metadata["ocr_engine"] != "tesseract" {
		t.Errorf("expected ocr_engine metadata, got %v", n.Metadata["ocr_engine"])
	}
	if !strings.HasSuffix(n.ID, "__shot") {
		t.Errorf("expected stem from origin, got %s", n.ID)
	}
}

func TestService_IngestImage_OCRFailure(t *testing.T) {
	// An OCR failure must still produce a note so the capture is not lost.
	path := writeTempImage(t, []byte("fake image bytes"))

	repo := NewMockRepository()
	svc := newTestService(t, core.ServiceConfig{
		Repository: repo,
		Extractor:  &MockExtractor{err: errors.New("engine exploded")},
	})

	n, err := svc.Ingest(context.TODO(), core.Capture{
		Kind:   core.CaptureImage,
		Source: core.SourceScreenshot,
		Path:   path,
	})
	if err != nil {
		t.Fatalf("Ingest should not fail on OCR errors: %v", err)
	}

	if !strings.HasPrefix(n.Content, "[OCR ERROR]") {
		t.Errorf("expected error marker body, got %q", n.Content)
	}
	if _, ok := n.Metadata["ocr_error"]; !ok {
		t.Error("expected ocr_error metadata")
	}
	if _, err := repo.Get(context.TODO(), n.ID); err != nil {
		t.Errorf("note not persisted: %v", err)
	}
}

func TestService_IngestDuplicate(t *testing.T) {
	repo := NewMockRepository()
	dedup := NewMockDedup()
	svc := newTestService(t, core.ServiceConfig{
		Repository: repo,
		Dedup:      dedup,
	})
	ctx := context.TODO()

	capture := core.Capture{
		Kind:   core.CaptureText,
		Source: core.SourceClipboard,
		Text:   "same content twice",
	}

	first, err := svc.Ingest(ctx, capture)
	if err != nil {
		t.Fatalf("first Ingest failed: %v", err)
	}

	_, err = svc.Ingest(ctx, capture)
	if !errors.Is(err, core.ErrDuplicateCapture) {
		t.Fatalf("expected ErrDuplicateCapture, got %v", err)
	}
	if !strings.Contains(err.Error(), first.ID) {
		t.Errorf("duplicate error should name the existing note: %v", err)
	}

	notes, _ := repo.List(ctx)
	if len(notes) != 1 {
		t.Errorf("expected 1 stored note, got %d", len(notes))
	}
}

func TestService_Events(t *testing.T) {
	svc := newTestService(t, core.ServiceConfig{
		Repository: NewMockRepository(),
		Dedup:      NewMockDedup(),
	})
	ctx := context.TODO()

	capture := core.Capture{
		Kind:   core.CaptureText,
		Source: core.SourceClipboard,
		Text:   "event payload",
	}

	n, err := svc.Ingest(ctx, capture)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	select {
	case e := <-svc.Events():
		if e.Type != core.EventStored {
			t.Errorf("expected STORED event, got %s", e.Type)
		}
		if e.NoteID != n.ID {
			t.Errorf("event names wrong note: %s", e.NoteID)
		}
	default:
		t.Fatal("expected a stored event on the channel")
	}

	// Same payload: a SKIPPED event instead of a second note.
	if _, err := svc.Ingest(ctx, capture); !errors.Is(err, core.ErrDuplicateCapture) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	select {
	case e := <-svc.Events():
		if e.Type != core.EventSkipped {
			t.Errorf("expected SKIPPED event, got %s", e.Type)
		}
	default:
		t.Fatal("expected a skipped event on the channel")
	}
}

func TestService_Run(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(t, core.ServiceConfig{Repository: repo})

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	captures := make(chan core.Capture, 2)
	captures <- core.Capture{Kind: core.CaptureText, Source: core.SourceClipboard, Text: "one", Time: base}
	captures <- core.Capture{Kind: core.CaptureText, Source: core.SourceClipboard, Text: "two", Time: base.Add(time.Second)}
	close(captures)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.Run(ctx, captures); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	notes, _ := repo.List(ctx)
	if len(notes) != 2 {
		t.Errorf("expected 2 notes after Run, got %d", len(notes))
	}
}

func TestService_CRUD(t *testing.T) {
	svc := newTestService(t, core.ServiceConfig{Repository: NewMockRepository()})
	ctx := context.TODO()

	n, err := svc.Ingest(ctx, core.Capture{Kind: core.CaptureText, Source: core.SourceClipboard, Text: "crud"})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	got, err := svc.GetNote(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.Content != "crud" {
		t.Errorf("unexpected content: %q", got.Content)
	}

	if _, err := svc.GetNote(ctx, ""); err == nil {
		t.Error("expected error for empty ID")
	}

	if err := svc.DeleteNote(ctx, n.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if _, err := svc.GetNote(ctx, n.ID); err == nil {
		t.Error("expected error after deletion, got nil")
	}
}

func TestService_Sync_Unsupported(t *testing.T) {
	svc := newTestService(t, core.ServiceConfig{Repository: NewMockRepository()})

	err := svc.Sync(context.TODO())
	if err == nil {
		t.Fatal("expected error for non-syncable repo")
	}
	if err.Error() != "repository does not support synchronization" {
		t.Errorf("unexpected error msg: %v", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := core.Fingerprint([]byte("payload"))
	b := core.Fingerprint([]byte("payload"))
	c := core.Fingerprint([]byte("other"))

	if a != b {
		t.Error("same payload must fingerprint identically")
	}
	if a == c {
		t.Error("different payloads must fingerprint differently")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
