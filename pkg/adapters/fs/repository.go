package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sgags-official/envisage/pkg/core"
	"github.com/sgags-official/envisage/pkg/git"
	"github.com/sgags-official/envisage/pkg/note"
)

// createdLayout is the frontmatter timestamp format (RFC3339 with millis).
const createdLayout = "2006-01-02T15:04:05.000Z07:00"

// Repository implements core.Repository and core.Deduplicator using the
// filesystem and Git. Each note is a Markdown file with YAML frontmatter;
// the dedup index lives in <systemDir>/index.json.
type Repository struct {
	Path   string
	git    *git.Client
	cache  *cache
	config Config
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	AutoInit  bool
	Gitless   bool
	MustExist bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".envisage"
	Remote    string // git remote for Sync, default "origin"
	Branch    string // git branch for Sync, default "main"
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".envisage"
	}
	if config.Remote == "" {
		config.Remote = "origin"
	}
	if config.Branch == "" {
		config.Branch = "main"
	}
	return &Repository{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize performs the necessary setup for the repository (mkdir, git init, index load).
func (r *Repository) Initialize(ctx context.Context) error {
	// 1. Directory Initialization
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("note store path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("note store path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create note store directory: %w", err)
		}
	}

	// 2. Git Initialization
	if !r.config.Gitless {
		if !git.IsInstalled() {
			return fmt.Errorf("git is not installed")
		}

		wasNewRepo := false
		if !r.git.IsRepo() {
			if r.config.AutoInit {
				if err := r.git.Init(); err != nil {
					return fmt.Errorf("failed to git init: %w", err)
				}
				wasNewRepo = true
			} else {
				return fmt.Errorf("path is not a git repository: %s", r.Path)
			}
		}

		// Ensure .gitignore has the system directory
		mod, err := r.ensureIgnore()
		if err != nil {
			return fmt.Errorf("failed to ensure .gitignore: %w", err)
		}

		if mod && wasNewRepo {
			if err := r.git.Add(".gitignore"); err != nil {
				return fmt.Errorf("failed to add .gitignore: %w", err)
			}
			if err := r.git.Commit(fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
				return fmt.Errorf("failed to commit .gitignore: %w", err)
			}
		}
	}

	// 3. Dedup index
	if err := r.cache.Load(); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	return nil
}

func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}

	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}

	return true, nil
}

// Save persists a note to the filesystem and commits it to Git.
//
// Workflow:
//  1. Serialize frontmatter + body.
//  2. Write atomically to disk.
//  3. Record the note in the metadata/dedup index.
//  4. (If Git enabled) 'git add' and 'git commit' with context metadata.
func (r *Repository) Save(ctx context.Context, n core.Note) error {
	if n.ID == "" {
		return fmt.Errorf("note has no ID")
	}

	filename := n.ID + ".md"
	fullPath := filepath.Join(r.Path, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := note.Encode(toFrontmatter(n), n.Content)
	if err != nil {
		return fmt.Errorf("failed to serialize note: %w", err)
	}

	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	mtime := time.Now()
	if info, err := os.Stat(fullPath); err == nil {
		mtime = info.ModTime()
	}
	r.cache.Set(filename, &indexEntry{
		ID:           n.ID,
		Hash:         n.Hash,
		Title:        titleOf(n),
		Source:       string(n.Source),
		Created:      n.CreatedAt,
		LastModified: mtime,
	})
	if err := r.cache.Save(); err != nil && r.config.Logger != nil {
		r.config.Logger.Warn("failed to persist index", "error", err)
	}

	if !r.config.Gitless {
		unlock, err := r.git.Lock()
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()

		if err := r.git.Add(filename); err != nil {
			return fmt.Errorf("failed to git add: %w", err)
		}

		msg := "note: capture " + n.ID
		if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
			msg = val
		}

		if err := r.git.Commit(msg); err != nil {
			return fmt.Errorf("failed to git commit: %w", err)
		}
	}

	return nil
}

// Get retrieves a note from the filesystem.
func (r *Repository) Get(ctx context.Context, id string) (core.Note, error) {
	fullPath := filepath.Join(r.Path, id+".md")

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Note{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return core.Note{}, err
	}
	defer f.Close()

	fm, body, err := note.Parse(f)
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to parse note %s: %w", id, err)
	}

	return fromFrontmatter(id, fm, body), nil
}

// List scans the store for all notes.
//
// Strategy:
//  1. Walk the directory tree (skipping .git and the system dir).
//  2. For each .md file: cache hit (by mtime) returns indexed metadata
//     without re-reading the file body. Cache miss does a full parse and
//     refreshes the index.
//  3. Persist the pruned index back to disk.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	var notes []core.Note
	seen := make(map[string]bool)

	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == r.config.SystemDir {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(d.Name()) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		id := strings.TrimSuffix(relPath, ".md")

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()

		seen[relPath] = true

		if entry, hit := r.cache.Get(relPath, mtime); hit {
			notes = append(notes, core.Note{
				ID:        entry.ID,
				Source:    core.SourceKind(entry.Source),
				Hash:      entry.Hash,
				CreatedAt: entry.Created,
				Metadata:  core.Metadata{"title": entry.Title},
			})
			return nil
		}

		n, err := r.Get(ctx, id)
		if err != nil {
			return nil // Skip unparseable
		}

		r.cache.Set(relPath, &indexEntry{
			ID:           id,
			Hash:         n.Hash,
			Title:        titleOf(n),
			Source:       string(n.Source),
			Created:      n.CreatedAt,
			LastModified: mtime,
		})

		notes = append(notes, n)
		return nil
	})

	if err != nil {
		return nil, err
	}

	r.cache.Prune(seen)
	if err := r.cache.Save(); err != nil && r.config.Logger != nil {
		r.config.Logger.Warn("failed to persist index", "error", err)
	}

	return notes, nil
}

// Delete removes a note.
func (r *Repository) Delete(ctx context.Context, id string) error {
	filename := id + ".md"
	fullPath := filepath.Join(r.Path, filename)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}

	if r.config.Gitless {
		if err := os.Remove(fullPath); err != nil {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		r.cache.Delete(filename)
		if err := r.cache.Save(); err != nil && r.config.Logger != nil {
			r.config.Logger.Warn("failed to persist index", "error", err)
		}
		return nil
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Rm(filename); err != nil {
		return fmt.Errorf("failed to git rm: %w", err)
	}

	if err := r.git.Commit("note: delete " + id); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}

	r.cache.Delete(filename)
	if err := r.cache.Save(); err != nil && r.config.Logger != nil {
		r.config.Logger.Warn("failed to persist index", "error", err)
	}

	return nil
}

// Seen implements core.Deduplicator against the persistent hash index.
func (r *Repository) Seen(ctx context.Context, hash string) (string, bool, error) {
	id, ok := r.cache.SeenHash(hash)
	return id, ok, nil
}

// Remember implements core.Deduplicator.
func (r *Repository) Remember(ctx context.Context, hash, noteID string) error {
	r.cache.SetHash(hash, noteID)
	return r.cache.Save()
}

// Sync snapshots local changes and synchronizes the store with its remote.
func (r *Repository) Sync(ctx context.Context) error {
	if r.config.Gitless {
		return fmt.Errorf("cannot sync in gitless mode")
	}

	if !r.git.IsRepo() {
		return fmt.Errorf("path is not a git repository: %s", r.Path)
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	dirty, err := r.git.HasChanges()
	if err != nil {
		return fmt.Errorf("failed to check working tree: %w", err)
	}
	if dirty {
		if err := r.git.AddAll(); err != nil {
			return fmt.Errorf("failed to stage changes: %w", err)
		}
		msg := "chore: snapshot notes before sync"
		if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
			msg = val
		}
		if err := r.git.Commit(msg); err != nil {
			return fmt.Errorf("failed to commit changes: %w", err)
		}
	}

	return r.git.Sync(r.config.Remote, r.config.Branch)
}

var (
	_ core.Repository   = (*Repository)(nil)
	_ core.Deduplicator = (*Repository)(nil)
	_ core.Syncable     = (*Repository)(nil)
)

// --- Frontmatter mapping (private) ---

// Reserved frontmatter keys carried by dedicated Note fields.
const (
	keyCreated = "created_utc"
	keySource  = "source"
	keyOrigin  = "orig_filename"
	keyHash    = "content_hash"
)

func toFrontmatter(n core.Note) note.Frontmatter {
	fm := make(note.Frontmatter, len(n.Metadata)+4)
	for k, v := range n.Metadata {
		fm[k] = v
	}
	if !n.CreatedAt.IsZero() {
		fm[keyCreated] = n.CreatedAt.UTC().Format(createdLayout)
	}
	if n.Source != "" {
		fm[keySource] = string(n.Source)
	}
	if n.Origin != "" {
		fm[keyOrigin] = n.Origin
	}
	if n.Hash != "" {
		fm[keyHash] = n.Hash
	}
	return fm
}

func fromFrontmatter(id string, fm note.Frontmatter, body string) core.Note {
	n := core.Note{
		ID:       id,
		Content:  body,
		Metadata: make(core.Metadata),
	}

	for k, v := range fm {
		switch k {
		case keyCreated:
			// yaml.v3 decodes unquoted timestamps straight to time.Time.
			switch val := v.(type) {
			case time.Time:
				n.CreatedAt = val
			case string:
				if t, err := time.Parse(time.RFC3339, val); err == nil {
					n.CreatedAt = t
				}
			}
		case keySource:
			if s, ok := v.(string); ok {
				n.Source = core.SourceKind(s)
			}
		case keyOrigin:
			if s, ok := v.(string); ok {
				n.Origin = s
			}
		case keyHash:
			if s, ok := v.(string); ok {
				n.Hash = s
			}
		default:
			n.Metadata[k] = v
		}
	}

	return n
}

func titleOf(n core.Note) string {
	if t, ok := n.Metadata["title"].(string); ok {
		return t
	}
	return ""
}
