package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface keeps the pipeline independent of the
// underlying storage mechanism (Filesystem, Git, SQL, S3, etc).
type Repository interface {
	// Save persists a note. It creates if not exists, or updates if it does.
	Save(ctx context.Context, n Note) error

	// Get retrieves a note by its ID.
	Get(ctx context.Context, id string) (Note, error)

	// List returns all available notes.
	List(ctx context.Context) ([]Note, error)

	// Delete removes a note by its ID.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready (create
	// directories, git init, index load).
	Initialize(ctx context.Context) error
}

// Deduplicator tracks which capture fingerprints already produced notes.
type Deduplicator interface {
	// Seen reports whether the hash is known, and which note holds it.
	Seen(ctx context.Context, hash string) (noteID string, ok bool, err error)

	// Remember records that a hash is now held by the given note.
	Remember(ctx context.Context, hash, noteID string) error
}

// Extractor turns an image file into text.
type Extractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// Source produces captures into a shared channel. Implementations are
// worker-style: Start is non-blocking and the run loop ends when the
// context is cancelled or Stop is called.
type Source interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Syncable defines an interface for repositories that support
// synchronization with a remote.
type Syncable interface {
	// Sync synchronizes the local state with a remote (e.g. git pull/push).
	Sync(ctx context.Context) error
}

type contextKey string

// ChangeReasonKey is the context key for passing specific change reasons
// (commit messages) during Save/Delete operations.
const ChangeReasonKey contextKey = "change_reason"
