// Package gallery names and writes generated images.
package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the yyyyMMddHHmmss prefix of saved files
const TimestampLayout = "20060102150405"

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Sanitize replaces every run of non-alphanumeric characters with a single
// underscore and trims underscores from both ends.
func Sanitize(prompt string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(prompt, "_"), "_")
}

// FileName returns "<timestamp>-<sanitized prompt>.png"
func FileName(at time.Time, prompt string) string {
	return fmt.Sprintf("%s-%s.png", at.Format(TimestampLayout), Sanitize(prompt))
}

// Gallery is a directory of generated images
type Gallery struct {
	dir string
	now func() time.Time
}

// New returns a gallery rooted at dir
func New(dir string) *Gallery {
	return &Gallery{dir: dir, now: time.Now}
}

// Dir returns the gallery directory
func (g *Gallery) Dir() string {
	return g.dir
}

// PathFor returns the path an image for prompt would be saved to now
func (g *Gallery) PathFor(prompt string) string {
	return filepath.Join(g.dir, FileName(g.now(), prompt))
}

// Save writes data to path, creating the gallery directory first
func (g *Gallery) Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
