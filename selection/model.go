package selection

import (
	"fmt"
	"strings"
	"sync"
)

// Separator joins the parts of the composed prompt
const Separator = ", "

// Model holds the selection state of a rendered catalog and derives the
// composed prompt from it. It is safe for concurrent use.
type Model struct {
	mu sync.RWMutex

	layout   Layout
	widgets  map[string]Widget // registry: selection key -> widget
	chosen   map[string]int    // selection key -> option index, for registered widgets
	order    []string          // every key ever seen, first-seen order
	values   map[string]string // present selections only
	seed     string
	prompt   string
	onChange []func(prompt string)
}

// NewModel renders the catalog and registers one widget per sub-category.
// Registration fixes the order in which selections appear in the prompt.
// When two sub-categories derive the same key the first one is registered
// and the later widgets share its options.
func NewModel(c *Catalog) *Model {
	m := &Model{
		layout:  Render(c),
		widgets: make(map[string]Widget),
		chosen:  make(map[string]int),
		values:  make(map[string]string),
	}
	for _, w := range m.layout.Widgets() {
		if _, ok := m.widgets[w.Key]; ok {
			continue
		}
		m.order = append(m.order, w.Key)
		m.widgets[w.Key] = w
	}
	return m
}

// Layout returns the rendered layout
func (m *Model) Layout() Layout {
	return m.layout
}

// Widget returns the registered widget for key
func (m *Model) Widget(key string) (Widget, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.widgets[key]
	return w, ok
}

// Subscribe registers fn to be called with the recomposed prompt after every
// mutation.
func (m *Model) Subscribe(fn func(prompt string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Seed returns the free-text seed
func (m *Model) Seed() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seed
}

// OnSeedChanged replaces the seed and returns the recomposed prompt
func (m *Model) OnSeedChanged(text string) string {
	m.mu.Lock()
	m.seed = text
	return m.commit()
}

// OnSelectionChanged records the fragment chosen for key. When present is
// false the key is removed. The recomposed prompt is returned.
func (m *Model) OnSelectionChanged(key, fragment string, present bool) string {
	m.mu.Lock()
	m.set(key, fragment, present)
	delete(m.chosen, key)
	if w, ok := m.widgets[key]; ok && present {
		for i, opt := range w.Options {
			if !opt.None && opt.Payload == fragment {
				m.chosen[key] = i
				break
			}
		}
	}
	return m.commit()
}

// Choose selects option index of the widget registered under key. Index 0 is
// the "no selection" option.
func (m *Model) Choose(key string, index int) (string, error) {
	m.mu.Lock()
	w, ok := m.widgets[key]
	if !ok {
		m.mu.Unlock()
		return "", fmt.Errorf("unknown selection key %q", key)
	}
	if index < 0 || index >= len(w.Options) {
		m.mu.Unlock()
		return "", fmt.Errorf("option %d out of range for %q (%d options)", index, key, len(w.Options))
	}

	opt := w.Options[index]
	m.set(key, opt.Payload, !opt.None)
	if opt.None {
		delete(m.chosen, key)
	} else {
		m.chosen[key] = index
	}
	return m.commit(), nil
}

// ChooseLabel selects the option of key whose label matches label, ignoring
// case. The no-selection label clears the key.
func (m *Model) ChooseLabel(key, label string) (string, error) {
	w, ok := m.Widget(key)
	if !ok {
		return "", fmt.Errorf("unknown selection key %q", key)
	}
	for i, opt := range w.Options {
		if strings.EqualFold(opt.Label, label) {
			return m.Choose(key, i)
		}
	}
	return "", fmt.Errorf("no option %q for %q", label, key)
}

// Chosen returns the option index currently selected for key; 0 means no
// selection.
func (m *Model) Chosen(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chosen[key]
}

// Selections returns a copy of the present selections
func (m *Model) Selections() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Prompt returns the last composed prompt
func (m *Model) Prompt() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prompt
}

// Recompose derives the prompt from the current state
func (m *Model) Recompose() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.compose()
}

// set must be called with mu held
func (m *Model) set(key, fragment string, present bool) {
	if !present {
		delete(m.values, key)
		return
	}
	if _, seen := m.widgets[key]; !seen && !m.known(key) {
		m.order = append(m.order, key)
	}
	m.values[key] = fragment
}

func (m *Model) known(key string) bool {
	for _, k := range m.order {
		if k == key {
			return true
		}
	}
	return false
}

func (m *Model) compose() string {
	parts := make([]string, 0, len(m.values)+1)
	if m.seed != "" {
		parts = append(parts, m.seed)
	}
	for _, key := range m.order {
		if v, ok := m.values[key]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, Separator)
}

// commit recomposes, releases mu and notifies subscribers outside the lock
func (m *Model) commit() string {
	m.prompt = m.compose()
	prompt := m.prompt
	subs := append([]func(string){}, m.onChange...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(prompt)
	}
	return prompt
}
