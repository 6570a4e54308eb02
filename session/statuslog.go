package session

import (
	"fmt"
	"sync"
	"time"
)

// Level classifies a status message
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Message represents a single line of the status log
type Message struct {
	Level     Level     `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// String formats the message for display
func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Timestamp.Format("15:04:05"), m.Text)
}

// StatusLog keeps the most recent human-readable status messages of a run
type StatusLog struct {
	messages []Message
	max      int // maximum number of messages to keep (0 = unlimited)
	mu       sync.RWMutex
	now      func() time.Time
}

// NewStatusLog creates a status log keeping at most max messages
func NewStatusLog(max int) *StatusLog {
	return &StatusLog{
		messages: make([]Message, 0),
		max:      max,
		now:      time.Now,
	}
}

// AddMessage appends an informational message
func (l *StatusLog) AddMessage(text string) {
	l.add(LevelInfo, text)
}

// AddError appends err as an error message
func (l *StatusLog) AddError(err error) {
	if err == nil {
		return
	}
	l.add(LevelError, err.Error())
}

func (l *StatusLog) add(level Level, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, Message{
		Level:     level,
		Text:      text,
		Timestamp: l.now(),
	})

	if l.max > 0 && len(l.messages) > l.max {
		l.messages = l.messages[len(l.messages)-l.max:]
	}
}

// Messages returns a copy of the kept messages, oldest first
func (l *StatusLog) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Message(nil), l.messages...)
}

// Tail returns up to n most recent messages, oldest first
func (l *StatusLog) Tail(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n >= len(l.messages) {
		return append([]Message(nil), l.messages...)
	}
	return append([]Message(nil), l.messages[len(l.messages)-n:]...)
}

// Last returns the most recent message, if any
func (l *StatusLog) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// Len returns the number of kept messages
func (l *StatusLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Clear removes all messages
func (l *StatusLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}
