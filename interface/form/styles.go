package form

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the form
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Widget   lipgloss.Style
	Focused  lipgloss.Style
	Prompt   lipgloss.Style
	Info     lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Disabled lipgloss.Style
}

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6b7280")
	danger = lipgloss.Color("#e53935")
)

// DefaultStyles returns the default form styles
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Header: lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1),
		Label:  lipgloss.NewStyle().Foreground(muted),
		Widget: lipgloss.NewStyle().
			Width(widgetWidth).
			Padding(0, 1).
			Border(lipgloss.HiddenBorder()),
		Focused: lipgloss.NewStyle().
			Width(widgetWidth).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		Prompt:   lipgloss.NewStyle().Italic(true),
		Info:     lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle().Foreground(danger),
		Help:     lipgloss.NewStyle().Foreground(muted),
		Disabled: lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
	}
}
