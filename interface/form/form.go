// Package form is the interactive shell around the selection model: a seed
// field, one selector per sub-category, the composed prompt and a generate
// trigger that is disabled while a generation is in flight.
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"promptgen/generator"
	"promptgen/selection"
	"promptgen/session"
)

const (
	widgetWidth   = 36
	statusLines   = 5
	seedFocus     = 0
	seedCharLimit = 200
)

// Generator produces an image from a composed prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (*generator.Result, error)
}

// Connector brings the tool session up. *mcp.Session satisfies it.
type Connector interface {
	Connect(ctx context.Context) error
}

type connectedMsg struct{ err error }

type generatedMsg struct {
	res *generator.Result
	err error
}

// Model is the bubbletea model of the prompt form
type Model struct {
	ctx       context.Context
	selection *selection.Model
	generator Generator
	connector Connector
	status    *session.StatusLog

	seed    textinput.Model
	spinner spinner.Model
	widgets []selection.Widget
	focus   int // 0 is the seed field, i>0 is widgets[i-1]

	busy      bool
	connected bool
	width     int
	styles    Styles
}

// New creates the form. connector may be nil when the session is brought up
// elsewhere.
func New(ctx context.Context, sel *selection.Model, gen Generator, connector Connector, status *session.StatusLog) Model {
	seed := textinput.New()
	seed.Placeholder = "Character"
	seed.CharLimit = seedCharLimit
	seed.Width = widgetWidth * 2
	seed.SetValue(sel.Seed())
	seed.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		selection: sel,
		generator: gen,
		connector: connector,
		status:    status,
		seed:      seed,
		spinner:   sp,
		widgets:   sel.Layout().Widgets(),
		connected: connector == nil,
		styles:    DefaultStyles(),
	}
}

// Init starts the connection to the tool provider
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.connector != nil {
		cmds = append(cmds, m.connect())
	}
	return tea.Batch(cmds...)
}

func (m Model) connect() tea.Cmd {
	connector, ctx := m.connector, m.ctx
	return func() tea.Msg {
		return connectedMsg{err: connector.Connect(ctx)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case connectedMsg:
		if msg.err != nil {
			m.status.AddError(msg.err)
		} else {
			m.connected = true
			m.status.AddMessage("Connected to image provider")
		}
		return m, nil

	case generatedMsg:
		// the generator already reported the outcome to the status log
		m.busy = false
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case "ctrl+g", "enter":
		return m.generate()
	}

	if m.focus == seedFocus {
		var cmd tea.Cmd
		before := m.seed.Value()
		m.seed, cmd = m.seed.Update(msg)
		if m.seed.Value() != before {
			m.selection.OnSeedChanged(m.seed.Value())
		}
		return m, cmd
	}

	switch msg.String() {
	case "left", "h":
		m.cycle(-1)
	case "right", "l", " ":
		m.cycle(1)
	case "backspace", "delete", "x":
		m.choose(0)
	}
	return m, nil
}

func (m *Model) moveFocus(delta int) {
	n := len(m.widgets) + 1
	m.focus = (m.focus + delta + n) % n
	if m.focus == seedFocus {
		m.seed.Focus()
	} else {
		m.seed.Blur()
	}
}

func (m *Model) cycle(delta int) {
	w := m.registered(m.widgets[m.focus-1])
	n := len(w.Options)
	m.choose((m.selection.Chosen(w.Key) + delta + n) % n)
}

// registered returns the widget the model holds for w's key. Widgets whose
// keys collide share the options of the first one.
func (m Model) registered(w selection.Widget) selection.Widget {
	if reg, ok := m.selection.Widget(w.Key); ok {
		return reg
	}
	return w
}

func (m *Model) choose(index int) {
	w := m.widgets[m.focus-1]
	if _, err := m.selection.Choose(w.Key, index); err != nil {
		m.status.AddError(err)
	}
}

func (m Model) generate() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true

	gen, ctx, prompt := m.generator, m.ctx, m.selection.Prompt()
	run := func() tea.Msg {
		res, err := gen.Generate(ctx, prompt)
		return generatedMsg{res: res, err: err}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

// Busy reports whether a generation is in flight
func (m Model) Busy() bool {
	return m.busy
}

// View renders the form
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Prompt Generator"))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Label.Render("Character") + "\n")
	sb.WriteString(m.seed.View())
	sb.WriteString("\n")

	idx := 0
	for _, el := range m.selection.Layout() {
		switch el.Kind {
		case selection.ElementHeader:
			sb.WriteString(m.styles.Header.Render(el.Title))
			sb.WriteString("\n")
		case selection.ElementRow:
			cells := make([]string, 0, len(el.Widgets))
			for _, w := range el.Widgets {
				idx++
				cells = append(cells, m.renderWidget(w, idx == m.focus))
			}
			sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Label.Render("Prompt: "))
	sb.WriteString(m.styles.Prompt.Render(m.selection.Prompt()))
	sb.WriteString("\n\n")
	sb.WriteString(m.renderTrigger())
	sb.WriteString("\n\n")

	for _, msg := range m.status.Tail(statusLines) {
		style := m.styles.Info
		if msg.Level == session.LevelError {
			style = m.styles.Error
		}
		sb.WriteString(style.Render(msg.String()))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Help.Render("tab/↑↓ move • ←→ choose • x clear • enter generate • esc quit"))
	return sb.String()
}

func (m Model) renderWidget(w selection.Widget, focused bool) string {
	style := m.styles.Widget
	if focused {
		style = m.styles.Focused
	}
	label := "-"
	opts := m.registered(w).Options
	if i := m.selection.Chosen(w.Key); i > 0 && i < len(opts) {
		label = opts[i].Label
	}
	return style.Render(fmt.Sprintf("%s\n‹ %s ›", m.styles.Label.Render(w.Label), label))
}

func (m Model) renderTrigger() string {
	switch {
	case m.busy:
		return m.spinner.View() + " Generating image..."
	case !m.connected:
		return m.styles.Disabled.Render("[ Generate ]") + " " + m.styles.Help.Render("not connected")
	default:
		return m.styles.Title.Render("[ Generate ]")
	}
}
