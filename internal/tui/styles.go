package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorRed       = lipgloss.AdaptiveColor{Light: "#D0342C", Dark: "#FF5C57"}
	colorTabBg     = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#2A2A3E"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	clockStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingRight(1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Background(colorTabBg).
				Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	rowTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(7)

	rowTempStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Width(8)

	rowDetailStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	itemSourceStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(12)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorSecondary).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingLeft(1)

	splashStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			PaddingLeft(1)
)

// statusStyle picks the render style from the status text itself, mirroring
// how the refresh messages encode their severity in the prefix.
func statusStyle(status string) lipgloss.Style {
	switch {
	case len(status) >= 6 && status[:6] == "Failed":
		return statusErrStyle
	case len(status) >= 7 && status[:7] == "Offline":
		return statusWarnStyle
	default:
		return statusOKStyle
	}
}
