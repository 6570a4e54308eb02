package gallery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"a cat! / dog?", "a_cat_dog"},
		{"1girl, long hair, beach", "1girl_long_hair_beach"},
		{"__already__clean__", "already_clean"},
		{"!!!", ""},
		{"", ""},
		{"猫 cat", "cat"},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.prompt))
		})
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 5, 3, 0, time.Local)
	assert.Equal(t, "20261019080503-a_cat_dog.png", FileName(at, "a cat! / dog?"))
}

func TestSaveCreatesDirectory(t *testing.T) {
	g := New(filepath.Join(t.TempDir(), "images"))
	g.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local) }

	path := g.PathFor("blue sky")
	assert.Equal(t, filepath.Join(g.Dir(), "20260102030405-blue_sky.png"), path)

	require.NoError(t, g.Save(path, []byte{0x89, 'P', 'N', 'G'}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}
