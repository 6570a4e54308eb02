package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatusLineWithoutTTY(t *testing.T) {
	var out syncBuffer
	s := NewStatusLineTo(&out, false)

	s.ShowWithSpinner("Connecting to genimage")
	s.Update("Generating image")
	s.Clear()

	assert.Equal(t, "Connecting to genimage\nGenerating image\n", out.String())
}

func TestStatusLineSpinnerClears(t *testing.T) {
	var out syncBuffer
	s := NewStatusLineTo(&out, true)

	s.ShowWithSpinner("Generating image")
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Generating image")
	}, time.Second, 10*time.Millisecond)

	s.Clear()
	written := out.String()
	assert.True(t, strings.HasSuffix(written, "\r"))

	// no frames after Clear returns
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, written, out.String())
}
