// Package ocr wraps the external Tesseract engine behind core.Extractor.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/sgags-official/envisage/pkg/core"
)

// DefaultBinary is the engine binary resolved from PATH when no explicit
// command is configured (TESSERACT_CMD).
const DefaultBinary = "tesseract"

// Client invokes the Tesseract CLI.
type Client struct {
	Binary string   // explicit path to the binary; empty means PATH lookup
	Args   []string // extra engine arguments (e.g. "--psm", "6")
	Logger *slog.Logger
}

// NewClient creates a Tesseract client. binary may be empty to use PATH.
func NewClient(binary string, logger *slog.Logger) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{
		Binary: binary,
		Logger: logger,
	}
}

// Available reports whether the engine binary can be resolved.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.Binary)
	return err == nil
}

// Version runs the engine's version check and returns the first line of
// its output (e.g. "tesseract 5.3.0").
func (c *Client) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.Binary, "--version")

	// Tesseract prints version info to stderr on some builds.
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract --version failed: %w\nOutput: %s", err, out)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

// ExtractText runs OCR on the given image and returns the extracted text.
func (c *Client) ExtractText(ctx context.Context, imagePath string) (string, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("image not readable: %w", err)
	}

	if c.Logger != nil {
		c.Logger.Debug("executing tesseract", "binary", c.Binary, "image", imagePath)
	}

	args := append([]string{imagePath, "stdout"}, c.Args...)
	cmd := exec.CommandContext(ctx, c.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w\nOutput: %s", err, stderr.String())
	}

	return stdout.String(), nil
}

var _ core.Extractor = (*Client)(nil)
