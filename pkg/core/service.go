package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultEventBuffer = 100
	defaultTopics      = "general"
	defaultEngine      = "tesseract"

	// emptyBody marks notes whose capture produced no text at all.
	emptyBody = "(no text)"
)

// ServiceConfig holds the dependencies and tuning knobs for the pipeline.
type ServiceConfig struct {
	Repository  Repository
	Dedup       Deduplicator
	Extractor   Extractor
	Logger      *slog.Logger
	EventBuffer int    // size of the event channel, 0 means default (100)
	Topics      string // default topics field for new notes
	Engine      string // OCR engine label recorded in note metadata
}

// Service drives the ingest pipeline: capture -> dedup -> OCR -> store.
type Service struct {
	repo      Repository
	dedup     Deduplicator
	extractor Extractor
	logger    *slog.Logger

	topics string
	engine string

	mu              sync.RWMutex
	events          chan Event
	eventBufferSize int
}

// NewService creates a new pipeline Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	if cfg.Topics == "" {
		cfg.Topics = defaultTopics
	}
	if cfg.Engine == "" {
		cfg.Engine = defaultEngine
	}

	return &Service{
		repo:            cfg.Repository,
		dedup:           cfg.Dedup,
		extractor:       cfg.Extractor,
		logger:          cfg.Logger,
		topics:          cfg.Topics,
		engine:          cfg.Engine,
		events:          make(chan Event, cfg.EventBuffer),
		eventBufferSize: cfg.EventBuffer,
	}, nil
}

// Events exposes the pipeline's outcome events. The channel is buffered;
// events are dropped when no consumer keeps up.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Ingest processes a single capture through the whole pipeline and returns
// the stored note. A capture whose content hash is already known returns
// ErrDuplicateCapture and stores nothing.
func (s *Service) Ingest(ctx context.Context, c Capture) (Note, error) {
	payload, err := capturePayload(c)
	if err != nil {
		return Note{}, fmt.Errorf("failed to read capture payload: %w", err)
	}

	hash := Fingerprint(payload)

	if s.dedup != nil {
		if noteID, seen, err := s.dedup.Seen(ctx, hash); err != nil {
			return Note{}, fmt.Errorf("dedup lookup failed: %w", err)
		} else if seen {
			s.logger.Debug("duplicate capture skipped", "hash", hash, "note", noteID)
			s.publish(Event{Type: EventSkipped, NoteID: noteID, Hash: hash, Source: c.Source, Timestamp: time.Now().Unix()})
			return Note{}, fmt.Errorf("%w (note %s)", ErrDuplicateCapture, noteID)
		}
	}

	body, extractErr := s.noteBody(ctx, c)

	now := c.Time
	if now.IsZero() {
		now = time.Now()
	}

	n := Note{
		ID:        NoteID(now, captureStem(c)),
		Source:    c.Source,
		Origin:    c.Origin,
		Hash:      hash,
		Content:   body,
		CreatedAt: now.UTC(),
		Metadata: Metadata{
			"topics":  s.topics,
			"version": "1.0",
		},
	}
	if c.Kind == CaptureImage {
		n.Metadata["ocr_engine"] = s.engine
	}
	if extractErr != nil {
		n.Metadata["ocr_error"] = extractErr.Error()
	}

	if err := s.repo.Save(ctx, n); err != nil {
		s.publish(Event{Type: EventFailed, Hash: hash, Source: c.Source, Timestamp: time.Now().Unix()})
		return Note{}, fmt.Errorf("failed to save note: %w", err)
	}

	if s.dedup != nil {
		if err := s.dedup.Remember(ctx, hash, n.ID); err != nil {
			// The note is on disk already; a lost index entry only costs a
			// re-OCR on the next identical capture.
			s.logger.Warn("failed to record fingerprint", "hash", hash, "error", err)
		}
	}

	s.logger.Info("note stored", "id", n.ID, "source", n.Source, "origin", n.Origin)
	s.publish(Event{Type: EventStored, NoteID: n.ID, Hash: hash, Source: c.Source, Timestamp: time.Now().Unix()})
	return n, nil
}

// noteBody resolves the textual body for a capture. OCR failures do not
// drop the capture: the note is stored with an error marker instead, so
// the image reference is never lost.
func (s *Service) noteBody(ctx context.Context, c Capture) (string, error) {
	switch c.Kind {
	case CaptureText:
		if strings.TrimSpace(c.Text) == "" {
			return emptyBody, nil
		}
		return c.Text, nil

	case CaptureImage:
		if s.extractor == nil {
			return "", errors.New("no extractor configured for image captures")
		}
		text, err := s.extractor.ExtractText(ctx, c.Path)
		if err != nil {
			s.logger.Error("ocr failed", "path", c.Path, "error", err)
			return fmt.Sprintf("[OCR ERROR] %v", err), err
		}
		if strings.TrimSpace(text) == "" {
			return emptyBody, nil
		}
		return text, nil

	default:
		return "", fmt.Errorf("unknown capture kind: %s", c.Kind)
	}
}

// Run starts the given sources and consumes their captures until the
// context is cancelled. Per-capture failures are logged, not fatal.
func (s *Service) Run(ctx context.Context, captures <-chan Capture, sources ...Source) error {
	for _, src := range sources {
		if err := src.Start(ctx); err != nil {
			return fmt.Errorf("failed to start source %s: %w", src.Name(), err)
		}
		s.logger.Info("source started", "source", src.Name())
	}

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, src := range sources {
			if err := src.Stop(stopCtx); err != nil {
				s.logger.Warn("failed to stop source", "source", src.Name(), "error", err)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-captures:
			if !ok {
				return nil
			}
			if _, err := s.Ingest(ctx, c); err != nil {
				if errors.Is(err, ErrDuplicateCapture) {
					continue
				}
				s.logger.Error("ingest failed", "capture", c.String(), "error", err)
			}
		}
	}
}

// GetNote retrieves a note.
func (s *Service) GetNote(ctx context.Context, id string) (Note, error) {
	if id == "" {
		return Note{}, errors.New("note ID cannot be empty")
	}
	return s.repo.Get(ctx, id)
}

// ListNotes retrieves all notes.
func (s *Service) ListNotes(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("note ID cannot be empty")
	}
	return s.repo.Delete(ctx, id)
}

// Sync synchronizes the store with its remote if the repository supports it.
func (s *Service) Sync(ctx context.Context) error {
	syncable, ok := s.repo.(Syncable)
	if !ok {
		return errors.New("repository does not support synchronization")
	}
	return syncable.Sync(ctx)
}

func (s *Service) publish(e Event) {
	select {
	case s.events <- e:
	default:
		s.logger.Debug("event buffer full, dropping event", "event", e.String())
	}
}

// Fingerprint returns the hex SHA-256 digest used for dedup.
func Fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func capturePayload(c Capture) ([]byte, error) {
	if c.Kind == CaptureText {
		return []byte(c.Text), nil
	}
	return os.ReadFile(c.Path)
}

func captureStem(c Capture) string {
	if c.Kind == CaptureText {
		return "clipboard"
	}
	base := filepath.Base(c.Path)
	if c.Origin != "" {
		base = filepath.Base(c.Origin)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
