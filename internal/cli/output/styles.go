package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by a Renderer.
type Styles struct {
	Header  lipgloss.Style
	Key     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Path    lipgloss.Style
}

// NewStyles builds the styles for a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Key:     r.NewStyle().Bold(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:    r.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Path:    r.NewStyle().Foreground(lipgloss.Color("13")),
	}
}
