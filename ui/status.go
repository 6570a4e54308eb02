package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

// StatusLine manages an in-place updating status line in the terminal
type StatusLine struct {
	mu          sync.Mutex
	out         io.Writer
	active      bool
	message     string
	spinner     []string
	spinnerIdx  int
	stopCh      chan struct{}
	doneCh      chan struct{}
	lastLineLen int
	isTTY       bool
}

// NewStatusLine creates a status line writing to stdout
func NewStatusLine() *StatusLine {
	fileInfo, err := os.Stdout.Stat()
	isTTY := err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0
	return NewStatusLineTo(os.Stdout, isTTY)
}

// NewStatusLineTo creates a status line on out. Without a TTY every
// message is printed once on its own line.
func NewStatusLineTo(out io.Writer, isTTY bool) *StatusLine {
	return &StatusLine{
		out:     out,
		spinner: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		isTTY:   isTTY,
	}
}

// ShowWithSpinner displays a status message with an animated spinner
func (s *StatusLine) ShowWithSpinner(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = msg
	s.spinnerIdx = 0

	if !s.isTTY {
		fmt.Fprintln(s.out, msg)
		return
	}

	s.active = true
	if s.stopCh == nil {
		s.stopCh = make(chan struct{})
		s.doneCh = make(chan struct{})
		go s.animate(s.stopCh, s.doneCh)
	}
}

// Update changes the message (maintains spinner if active)
func (s *StatusLine) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isTTY {
		fmt.Fprintln(s.out, msg)
		return
	}

	// the spinner animation picks it up
	s.message = msg
}

// Clear removes the status line and stops any animation
func (s *StatusLine) Clear() {
	s.mu.Lock()
	stop, done := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isTTY {
		s.clear()
	}
	s.active = false
	s.message = ""
}

func (s *StatusLine) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.active {
				s.spinnerIdx = (s.spinnerIdx + 1) % len(s.spinner)
				s.clear()
				s.print(s.formatWithSpinner())
			}
			s.mu.Unlock()
		}
	}
}

// print outputs text without newline
func (s *StatusLine) print(text string) {
	fmt.Fprint(s.out, text)
	s.lastLineLen = lipgloss.Width(text)
}

// clear erases the current line
func (s *StatusLine) clear() {
	if s.lastLineLen > 0 {
		fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.lastLineLen)+"\r")
		s.lastLineLen = 0
	}
}

func (s *StatusLine) formatWithSpinner() string {
	return fmt.Sprintf("%s %s", spinnerStyle.Render(s.spinner[s.spinnerIdx]), s.message)
}
