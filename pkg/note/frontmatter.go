// Package note implements the on-disk note format: Markdown with an
// optional YAML frontmatter block delimited by ---.
package note

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter aliases the flexible YAML metadata map.
type Frontmatter map[string]any

// Parse reads a stream and splits it into frontmatter and body.
// It detects if the stream starts with a frontmatter block (delimited by ---).
func Parse(r io.Reader) (Frontmatter, string, error) {
	// Read everything to memory; notes are small.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}

	fm := make(Frontmatter)

	// Standard: the block must start at the very beginning with ---
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		return fm, string(data), nil
	}

	rest := data[3:] // Skip first ---

	// The closing fence is the next "---". If it never arrives the file is
	// malformed; error rather than silently swallowing metadata as body.
	parts := bytes.SplitN(rest, []byte("---"), 2)
	if len(parts) == 1 {
		return nil, "", errors.New("frontmatter started but no closing delimiter found")
	}

	if err := yaml.Unmarshal(parts[0], &fm); err != nil {
		return nil, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	// Trim the newline right after the closing ---
	body := strings.TrimPrefix(string(parts[1]), "\n")
	body = strings.TrimPrefix(body, "\r\n")

	return fm, body, nil
}

// Encode serializes frontmatter + body back to the Markdown file format.
func Encode(fm Frontmatter, body string) ([]byte, error) {
	var buf bytes.Buffer

	if len(fm) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(fm); err != nil {
			return nil, err
		}
		encoder.Close()
		buf.WriteString("---\n")
	}

	buf.WriteString(body)
	return buf.Bytes(), nil
}
