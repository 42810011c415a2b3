// Package site renders the note store into a static browsable page set:
// one HTML page per note under <site>/notes/ plus an index table sorted
// newest-first.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/sgags-official/envisage/pkg/core"
)

// Generator builds the static site from the note repository.
type Generator struct {
	repo    core.Repository
	siteDir string
	logger  *slog.Logger
	md      goldmark.Markdown
	noteTpl *template.Template
	idxTpl  *template.Template
}

// entry is one row of the index table.
type entry struct {
	Title   string
	Created string
	Source  string
	Topics  string
	Version string
	Href    string
	File    string

	createdAt time.Time
}

// NewGenerator creates a site generator writing into siteDir.
func NewGenerator(repo core.Repository, siteDir string, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	noteTpl, err := template.New("note").Parse(notePageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse note template: %w", err)
	}
	idxTpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	return &Generator{
		repo:    repo,
		siteDir: siteDir,
		logger:  logger,
		md:      goldmark.New(),
		noteTpl: noteTpl,
		idxTpl:  idxTpl,
	}, nil
}

// Generate renders every note page and the index. Notes that fail to
// render are skipped with a logged error; one broken note must not take
// the whole site down.
func (g *Generator) Generate(ctx context.Context) error {
	notesDir := filepath.Join(g.siteDir, "notes")
	if err := os.MkdirAll(notesDir, 0755); err != nil {
		return fmt.Errorf("failed to create site directories: %w", err)
	}

	listed, err := g.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	generatedAt := time.Now().UTC().Format(time.RFC3339)

	var entries []entry
	for _, listedNote := range listed {
		// List may serve cached metadata without the body; re-read.
		n, err := g.repo.Get(ctx, listedNote.ID)
		if err != nil {
			g.logger.Error("failed to read note", "id", listedNote.ID, "error", err)
			continue
		}

		e, err := g.renderNote(notesDir, n, generatedAt)
		if err != nil {
			g.logger.Error("failed to render note", "id", n.ID, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	// Newest first; notes without a timestamp sink to the end.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})

	if err := g.renderIndex(entries, generatedAt); err != nil {
		return err
	}

	g.logger.Info("site generated", "dir", g.siteDir, "notes", len(entries))
	return nil
}

func (g *Generator) renderNote(notesDir string, n core.Note, generatedAt string) (entry, error) {
	var body bytes.Buffer
	if err := g.md.Convert([]byte(n.Content), &body); err != nil {
		return entry{}, fmt.Errorf("markdown conversion failed: %w", err)
	}

	title := Title(n)
	created := ""
	if !n.CreatedAt.IsZero() {
		created = n.CreatedAt.UTC().Format(time.RFC3339)
	}

	data := map[string]any{
		"Title":       title,
		"Source":      orDash(string(n.Source)),
		"Origin":      orDash(n.Origin),
		"Topics":      orDash(metaString(n, "topics")),
		"Version":     orDash(metaString(n, "version")),
		"Created":     created,
		"Body":        template.HTML(body.String()),
		"GeneratedAt": generatedAt,
	}

	var page bytes.Buffer
	if err := g.noteTpl.Execute(&page, data); err != nil {
		return entry{}, err
	}

	outName := n.ID + ".html"
	if err := os.WriteFile(filepath.Join(notesDir, outName), page.Bytes(), 0644); err != nil {
		return entry{}, err
	}

	return entry{
		Title:     title,
		Created:   created,
		Source:    string(n.Source),
		Topics:    metaString(n, "topics"),
		Version:   metaString(n, "version"),
		Href:      "notes/" + outName,
		File:      n.ID + ".md",
		createdAt: n.CreatedAt,
	}, nil
}

func (g *Generator) renderIndex(entries []entry, generatedAt string) error {
	var page bytes.Buffer
	err := g.idxTpl.Execute(&page, map[string]any{
		"Entries":     entries,
		"GeneratedAt": generatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}

	return os.WriteFile(filepath.Join(g.siteDir, "index.html"), page.Bytes(), 0644)
}

// Title derives a display title for a note: frontmatter title, else the
// first markdown heading, else the first non-empty line, else "Untitled".
func Title(n core.Note) string {
	if t := metaString(n, "title"); t != "" {
		return t
	}

	for _, line := range strings.Split(n.Content, "\n") {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "# ") {
			return strings.TrimSpace(l[2:])
		}
	}

	for _, line := range strings.Split(n.Content, "\n") {
		l := strings.TrimSpace(line)
		if l != "" {
			if len(l) > 80 {
				return l[:80]
			}
			return l
		}
	}

	return "Untitled"
}

func metaString(n core.Note, key string) string {
	if v, ok := n.Metadata[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
