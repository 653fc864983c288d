package widget

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header     lipgloss.Style
	user       lipgloss.Style
	assistant  lipgloss.Style
	muted      lipgloss.Style
	suggestion lipgloss.Style
	notice     lipgloss.Style
	inputPanel lipgloss.Style
	launcher   lipgloss.Style
	badge      lipgloss.Style
}

func newTheme() theme {
	blue := lipgloss.Color("#2563eb")
	gray := lipgloss.Color("#9ca3af")

	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(blue).
			Padding(0, 1),
		user:       lipgloss.NewStyle().Foreground(blue).Bold(true),
		assistant:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")).Bold(true),
		muted:      lipgloss.NewStyle().Foreground(gray),
		suggestion: lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa")),
		notice:     lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(gray),
		launcher: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(blue).
			Padding(0, 1),
		badge: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
	}
}
