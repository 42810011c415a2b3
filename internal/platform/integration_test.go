package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgags-official/envisage/internal/config"
	"github.com/sgags-official/envisage/internal/platform"
	"github.com/sgags-official/envisage/pkg/core"
)

// stubExtractor stands in for the tesseract binary.
type stubExtractor struct {
	text string
}

func (s *stubExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	return s.text, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.SiteDir = filepath.Join(t.TempDir(), "site")
	cfg.Normalize()
	return cfg
}

func TestEnsureDirs(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, platform.EnsureDirs(cfg))

	for _, dir := range cfg.Dirs() {
		info, err := os.Stat(dir)
		require.NoError(t, err, "dir %s should exist", dir)
		assert.True(t, info.IsDir())
	}
}

func TestInit(t *testing.T) {
	cfg := testConfig(t)

	repo, err := platform.Init(cfg, platform.WithAutoInit(true))
	require.NoError(t, err)
	require.NotNil(t, repo)

	if _, err := os.Stat(cfg.NotesDir); err != nil {
		t.Errorf("notes dir should be created: %v", err)
	}
}

func TestNew_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, platform.EnsureDirs(cfg))

	svc, err := platform.New(cfg,
		platform.WithAutoInit(true),
		platform.WithExtractor(&stubExtractor{text: "text from image"}),
	)
	require.NoError(t, err)

	ctx := context.Background()

	imgPath := filepath.Join(cfg.ScreenshotsDir, "shot.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("pretend image bytes"), 0644))

	n, err := svc.Ingest(ctx, core.Capture{
		ID:     "c1",
		Kind:   core.CaptureImage,
		Source: core.SourceScreenshot,
		Path:   imgPath,
		Origin: "shot.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "text from image", n.Content)

	// The note landed on disk as markdown.
	if _, err := os.Stat(filepath.Join(cfg.NotesDir, n.ID+".md")); err != nil {
		t.Errorf("note file missing: %v", err)
	}

	// Same image again: deduplicated via the persistent index.
	_, err = svc.Ingest(ctx, core.Capture{
		ID:     "c2",
		Kind:   core.CaptureImage,
		Source: core.SourceScreenshot,
		Path:   imgPath,
		Origin: "shot.png",
	})
	assert.True(t, errors.Is(err, core.ErrDuplicateCapture), "expected duplicate error, got %v", err)

	notes, err := svc.ListNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestNew_DedupSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, platform.EnsureDirs(cfg))

	open := func() *core.Service {
		svc, err := platform.New(cfg,
			platform.WithAutoInit(true),
			platform.WithExtractor(&stubExtractor{text: "stable text"}),
		)
		require.NoError(t, err)
		return svc
	}

	imgPath := filepath.Join(cfg.ScreenshotsDir, "persist.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("identical bytes"), 0644))

	capture := core.Capture{
		Kind:   core.CaptureImage,
		Source: core.SourceScreenshot,
		Path:   imgPath,
		Origin: "persist.png",
	}

	_, err := open().Ingest(context.Background(), capture)
	require.NoError(t, err)

	// A fresh service over the same store must still know the hash.
	_, err = open().Ingest(context.Background(), capture)
	assert.True(t, errors.Is(err, core.ErrDuplicateCapture), "expected duplicate after restart, got %v", err)
}

func TestNewSources(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, platform.EnsureDirs(cfg))

	out := make(chan core.Capture, 1)
	sources := platform.NewSources(cfg, out)

	require.Len(t, sources, 2)
	names := []string{sources[0].Name(), sources[1].Name()}
	assert.Contains(t, names, "screenshot")
	assert.Contains(t, names, "clipboard")
}
