package ocr_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sgags-official/envisage/pkg/ocr"
)

// fakeEngine writes a shell script standing in for the tesseract binary.
func fakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write fake engine: %v", err)
	}
	return path
}

func TestClient_Available(t *testing.T) {
	t.Run("Missing Binary", func(t *testing.T) {
		c := ocr.NewClient(filepath.Join(t.TempDir(), "no-such-binary"), nil)
		if c.Available() {
			t.Error("expected Available to be false for missing binary")
		}
	})

	t.Run("Fake Binary", func(t *testing.T) {
		c := ocr.NewClient(fakeEngine(t, "exit 0"), nil)
		if !c.Available() {
			t.Error("expected Available to be true")
		}
	})
}

func TestClient_Version(t *testing.T) {
	c := ocr.NewClient(fakeEngine(t, `echo "tesseract 5.3.0"; echo "leptonica-1.82.0"`), nil)

	version, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != "tesseract 5.3.0" {
		t.Errorf("expected first output line, got %q", version)
	}
}

func TestClient_ExtractText(t *testing.T) {
	t.Run("Returns Stdout", func(t *testing.T) {
		c := ocr.NewClient(fakeEngine(t, `echo "recognized text"`), nil)

		img := filepath.Join(t.TempDir(), "shot.png")
		if err := os.WriteFile(img, []byte("fake"), 0644); err != nil {
			t.Fatal(err)
		}

		text, err := c.ExtractText(context.Background(), img)
		if err != nil {
			t.Fatalf("ExtractText failed: %v", err)
		}
		if strings.TrimSpace(text) != "recognized text" {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("Reports Stderr on Failure", func(t *testing.T) {
		c := ocr.NewClient(fakeEngine(t, `echo "cannot read image" >&2; exit 1`), nil)

		img := filepath.Join(t.TempDir(), "shot.png")
		if err := os.WriteFile(img, []byte("fake"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := c.ExtractText(context.Background(), img)
		if err == nil {
			t.Fatal("expected error from failing engine")
		}
		if !strings.Contains(err.Error(), "cannot read image") {
			t.Errorf("error should carry stderr, got: %v", err)
		}
	})

	t.Run("Fails Fast on Missing Image", func(t *testing.T) {
		c := ocr.NewClient(fakeEngine(t, "exit 0"), nil)

		_, err := c.ExtractText(context.Background(), filepath.Join(t.TempDir(), "ghost.png"))
		if err == nil {
			t.Fatal("expected error for missing image")
		}
	})
}

func TestNewClient_DefaultBinary(t *testing.T) {
	c := ocr.NewClient("", nil)
	if c.Binary != ocr.DefaultBinary {
		t.Errorf("expected default binary %q, got %q", ocr.DefaultBinary, c.Binary)
	}
}
