package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-quest/internal/lms"
)

// Palette used across the player screens.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	speakerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	widgetStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	focusedWidgetStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("57")).
				PaddingLeft(1)

	correctStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	incorrectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	lockedStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	disabledButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(lipgloss.Color("243")).
				Background(lipgloss.Color("236"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
)

// statusStyles colors lesson statuses in summaries and tables.
var statusStyles = map[lms.Status]lipgloss.Style{
	lms.StatusPassed:       correctStyle,
	lms.StatusCompleted:    correctStyle,
	lms.StatusFailed:       incorrectStyle,
	lms.StatusIncomplete:   lockedStyle,
	lms.StatusNotAttempted: lockedStyle,
}

func renderStatus(s lms.Status, label string) string {
	style, ok := statusStyles[s]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render(label)
}

func renderButton(label string, enabled bool) string {
	if enabled {
		return buttonStyle.Render(label)
	}
	return disabledButtonStyle.Render(label)
}

// progressBar renders done/total as a fixed-width bar.
func progressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return correctStyle.Render(strings.Repeat("━", filled)) +
		lockedStyle.Render(strings.Repeat("━", width-filled))
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
