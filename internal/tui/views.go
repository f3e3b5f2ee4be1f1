package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mpavel/homescreen/internal/state"
)

var pageTitles = [...]string{"Weather", "News", "Settings", "Accounts"}

func (a *App) View() string {
	if a.splash {
		return a.viewSplash()
	}

	var b strings.Builder
	b.WriteString(a.viewHeader())
	b.WriteString("\n")
	b.WriteString(a.viewTabs())
	b.WriteString("\n")

	switch a.page {
	case state.PageWeather:
		b.WriteString(a.viewWeather())
	case state.PageNews:
		b.WriteString(a.viewNews())
	case state.PageSettings:
		b.WriteString(a.viewSettings())
	case state.PageAccounts:
		b.WriteString(a.viewAccounts())
	}

	b.WriteString("\n")
	b.WriteString(a.viewStatusBar())
	return b.String()
}

func (a *App) viewSplash() string {
	logo := splashStyle.Render("homescreen") + "\n" +
		helpStyle.Render("weather • news • "+a.version)
	if a.width == 0 || a.height == 0 {
		return logo
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, logo)
}

func (a *App) viewHeader() string {
	title := titleStyle.Render("homescreen")
	clock := clockStyle.Render(a.clock)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(clock)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + clock
}

func (a *App) viewTabs() string {
	tabs := make([]string, len(pageTitles))
	for i, name := range pageTitles {
		if state.Page(i) == a.page {
			tabs[i] = tabActiveStyle.Render(name)
		} else {
			tabs[i] = tabInactiveStyle.Render(name)
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) viewWeather() string {
	var b strings.Builder
	b.WriteString(a.statusLine(a.weather.Status))
	b.WriteString("\n")

	if len(a.weather.Rows) == 0 {
		b.WriteString(helpStyle.Render("No forecast yet."))
		return panelStyle.Render(b.String())
	}

	for i, r := range a.weather.Rows {
		line := fmt.Sprintf("%s %s %s %s",
			rowTimeStyle.Render(r.Time),
			rowTempStyle.Render(r.Temp),
			rowDetailStyle.Render(r.Summary),
			itemTimeStyle.Render("feels "+r.FeelsLike+" • "+r.Precipitation),
		)
		if r.Icon != "" {
			line = r.Icon + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(a.weather.Rows)-1 {
			b.WriteString("\n")
		}
	}
	return panelStyle.Render(b.String())
}

func (a *App) viewNews() string {
	var b strings.Builder
	b.WriteString(a.statusLine(a.news.Status))
	b.WriteString("\n")

	if len(a.news.Articles) == 0 {
		b.WriteString(helpStyle.Render("No stories yet."))
		return panelStyle.Render(b.String())
	}

	for i, art := range a.news.Articles {
		marker := "  "
		title := itemTitleStyle.Render(art.Title)
		if i == a.newsCursor {
			marker = itemSelectedStyle.Render("> ")
			title = itemSelectedStyle.Render(art.Title)
		}
		b.WriteString(marker + title + "\n")
		b.WriteString("    " + itemSourceStyle.Render(art.Source))
		if art.Published != "" {
			b.WriteString(" " + itemTimeStyle.Render(art.Published))
		}
		if i < len(a.news.Articles)-1 {
			b.WriteString("\n")
		}
	}
	if a.browserErr != "" {
		b.WriteString("\n" + errorStyle.Render("Open failed: "+a.browserErr))
	}
	out := panelStyle.Render(b.String())
	return out + "\n" + helpStyle.Render("↑/↓ select • enter open in browser")
}

func (a *App) viewSettings() string {
	unit := "Fahrenheit (°F)"
	if a.settings.Celsius {
		unit = "Celsius (°C)"
	}
	unitLine := "  " + unit
	if a.settingsFocus == 2 {
		unitLine = itemSelectedStyle.Render("> " + unit)
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("City") + a.cityInput.View() + "\n")
	b.WriteString(labelStyle.Render("News topic") + a.topicInput.View() + "\n")
	b.WriteString(labelStyle.Render("Units") + unitLine)
	if a.settingsNote != "" {
		b.WriteString("\n\n" + statusOKStyle.Render(a.settingsNote))
	}
	out := panelStyle.Render(b.String())
	return out + "\n" + helpStyle.Render("tab next field • space toggle units • enter save • esc back")
}

func (a *App) viewAccounts() string {
	if a.acctMode == accountsForm {
		return a.viewAccountForm()
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Session") + statusOKStyle.Render(a.sync.CurrentUser()) + "\n\n")

	if len(a.users) == 0 {
		b.WriteString(helpStyle.Render("No accounts yet. Press n to create one."))
	} else {
		for i, u := range a.users {
			if i == a.userCursor {
				b.WriteString(itemSelectedStyle.Render("> " + u))
			} else {
				b.WriteString("  " + u)
			}
			if i < len(a.users)-1 {
				b.WriteString("\n")
			}
		}
	}
	if a.authErr != "" {
		b.WriteString("\n" + errorStyle.Render(a.authErr))
	}
	out := panelStyle.Render(b.String())
	return out + "\n" + helpStyle.Render("enter switch • l login • n new account • d delete • g guest")
}

func (a *App) viewAccountForm() string {
	verb := "Log in"
	if a.registering {
		verb = "New account"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(verb) + "\n\n")
	b.WriteString(labelStyle.Render("User") + a.nameInput.View() + "\n")
	b.WriteString(labelStyle.Render("PIN") + a.pinInput.View())
	if a.authBusy {
		b.WriteString("\n\n" + a.spinner.View() + " verifying…")
	}
	if a.authErr != "" {
		b.WriteString("\n\n" + errorStyle.Render(a.authErr))
	}
	out := panelStyle.Render(b.String())
	return out + "\n" + helpStyle.Render("tab switch field • enter submit • esc cancel")
}

func (a *App) statusLine(status string) string {
	if status == "" {
		status = "Loading…"
	}
	line := statusStyle(status).Render(status)
	if strings.HasPrefix(status, "Loading") {
		line = a.spinner.View() + " " + line
	}
	return line
}

func (a *App) viewStatusBar() string {
	left := "user: " + a.sync.CurrentUser()
	right := "tab pages • r refresh • q quit"
	bar := left + strings.Repeat(" ", 2) + right
	if a.width > 0 {
		gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
		if gap > 0 {
			bar = left + strings.Repeat(" ", gap) + right
		}
		return statusBarStyle.Width(a.width).Render(bar)
	}
	return statusBarStyle.Render(bar)
}
