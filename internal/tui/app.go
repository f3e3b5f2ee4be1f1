// Package tui renders the dashboard as a full-screen terminal app. The model
// holds only presentation state; refresh policy lives in the refresh package
// and lands here as messages through the state synchronizer.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpavel/homescreen/internal/config"
	"github.com/mpavel/homescreen/internal/logging"
	"github.com/mpavel/homescreen/internal/refresh"
	"github.com/mpavel/homescreen/internal/session"
	"github.com/mpavel/homescreen/internal/state"
)

// splashDuration is how long the startup splash stays on screen before the
// dashboard appears and the first refresh fires.
const splashDuration = 1200 * time.Millisecond

const clockLayout = "Mon 2 Jan • 15:04:05"

// Refresher triggers background refreshes whose results arrive as messages.
type Refresher interface {
	Weather(ctx context.Context, city string, celsius bool)
	News(ctx context.Context, topic string)
}

// accountsMode switches the Accounts page between the user list and the
// login/register form.
type accountsMode int

const (
	accountsList accountsMode = iota
	accountsForm
)

// App is the bubbletea model for the dashboard.
type App struct {
	session   *session.Manager
	cfg       *config.Service
	sync      *state.Synchronizer
	refresher Refresher
	settings  config.Settings
	version   string

	width  int
	height int
	splash bool
	clock  string
	page   state.Page

	weather    refresh.WeatherView
	news       refresh.NewsView
	newsCursor int

	spinner spinner.Model

	// Settings page.
	cityInput     textinput.Model
	topicInput    textinput.Model
	settingsFocus int
	settingsNote  string

	// Accounts page.
	acctMode    accountsMode
	users       []string
	userCursor  int
	registering bool
	nameInput   textinput.Model
	pinInput    textinput.Model
	formFocus   int
	authBusy    bool
	authErr     string
	browserErr  string
}

// Options wires the app to the services it presents.
type Options struct {
	Session   *session.Manager
	Config    *config.Service
	Sync      *state.Synchronizer
	Refresher Refresher
	Settings  config.Settings
	Version   string
}

// NewApp builds the model. The dashboard starts on the splash screen as the
// logged-out guest.
func NewApp(opts Options) *App {
	city := textinput.New()
	city.Placeholder = "City"
	city.CharLimit = 64
	city.SetValue(opts.Settings.City)

	topic := textinput.New()
	topic.Placeholder = "Top Stories"
	topic.CharLimit = 64
	topic.SetValue(opts.Settings.Topic)

	name := textinput.New()
	name.Placeholder = "username"
	name.CharLimit = 32

	pin := textinput.New()
	pin.Placeholder = "PIN"
	pin.CharLimit = 16
	pin.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		session:    opts.Session,
		cfg:        opts.Config,
		sync:       opts.Sync,
		refresher:  opts.Refresher,
		settings:   opts.Settings,
		version:    opts.Version,
		splash:     true,
		clock:      time.Now().Format(clockLayout),
		cityInput:  city,
		topicInput: topic,
		nameInput:  name,
		pinInput:   pin,
		spinner:    sp,
		users:      opts.Session.Users(),
	}
}

// Run attaches the synchronizer to the program's message queue, runs the
// event loop, and releases the sink on the way out so in-flight background
// fetches complete silently.
func Run(a *App) error {
	p := tea.NewProgram(a, tea.WithAltScreen())

	a.sync.Attach(func(msg any) { p.Send(msg) })
	defer a.sync.Release()

	_, err := p.Run()
	return err
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		clockTick(),
		tea.Tick(splashDuration, func(time.Time) tea.Msg { return splashDoneMsg{} }),
	)
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

// refreshAllCmd fires both domain refreshes with the current settings. The
// orchestrator presents its results back through the synchronizer.
func (a *App) refreshAllCmd() tea.Cmd {
	r, city, topic, celsius := a.refresher, a.settings.City, a.settings.Topic, a.settings.Celsius
	return func() tea.Msg {
		r.Weather(context.Background(), city, celsius)
		r.News(context.Background(), topic)
		return nil
	}
}

// authCmd runs credential verification off the update loop; bcrypt is too
// slow to hold the render hostage.
func (a *App) authCmd(register bool, user, pin string) tea.Cmd {
	s := a.session
	return func() tea.Msg {
		var (
			cfg config.Settings
			err error
		)
		if register {
			cfg, err = s.Register(user, pin)
		} else {
			cfg, err = s.Login(user, pin)
		}
		return authDoneMsg{settings: cfg, err: err}
	}
}

func openArticleCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := openBrowser(url); err != nil {
			logger := logging.L()
			logger.Warn().Str("url", url).Err(err).Msg("opening article failed")
			return browserErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.browserErr = ""
		return a.handleKey(msg)

	case clockTickMsg:
		a.clock = time.Time(msg).Format(clockLayout)
		a.sync.Mutate(func(st *state.AppState) { st.ClockText = a.clock })
		return a, clockTick()

	case splashDoneMsg:
		if !a.splash {
			return a, nil
		}
		a.splash = false
		return a, a.refreshAllCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case refresh.WeatherStatus, refresh.WeatherRows, refresh.WeatherFailure:
		a.weather = a.weather.Apply(msg)
		return a, nil

	case refresh.NewsStatus, refresh.NewsRows, refresh.NewsFailure:
		a.news = a.news.Apply(msg)
		if a.newsCursor >= len(a.news.Articles) {
			a.newsCursor = max(0, len(a.news.Articles)-1)
		}
		return a, nil

	case authDoneMsg:
		a.authBusy = false
		if msg.err != nil {
			a.authErr = msg.err.Error()
			return a, nil
		}
		a.settings = msg.settings
		a.syncSettingsInputs()
		a.users = a.session.Users()
		a.acctMode = accountsList
		a.authErr = ""
		a.setPage(state.PageWeather)
		return a, a.refreshAllCmd()

	case browserErrMsg:
		a.browserErr = msg.err.Error()
		return a, nil
	}

	return a, nil
}

func (a *App) setPage(p state.Page) {
	a.page = p
	a.sync.Mutate(func(st *state.AppState) { st.Page = p })
	if p == state.PageAccounts {
		a.users = a.session.Users()
		if a.userCursor >= len(a.users) {
			a.userCursor = max(0, len(a.users)-1)
		}
	}
	if p == state.PageSettings {
		a.settingsNote = ""
		a.syncSettingsInputs()
		a.settingsFocus = 0
		a.focusSettings()
	}
}

// syncSettingsInputs pushes the active settings back into the edit fields,
// discarding any half-typed edits.
func (a *App) syncSettingsInputs() {
	a.cityInput.SetValue(a.settings.City)
	a.topicInput.SetValue(a.settings.Topic)
}

func (a *App) focusSettings() {
	a.cityInput.Blur()
	a.topicInput.Blur()
	switch a.settingsFocus {
	case 0:
		a.cityInput.Focus()
	case 1:
		a.topicInput.Focus()
	}
}

func (a *App) focusForm() {
	a.nameInput.Blur()
	a.pinInput.Blur()
	if a.formFocus == 0 {
		a.nameInput.Focus()
	} else {
		a.pinInput.Focus()
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.splash {
		// Any key skips the splash.
		a.splash = false
		return a, a.refreshAllCmd()
	}

	key := msg.String()

	// Text entry pages swallow most keys; route to them first.
	if a.page == state.PageSettings {
		return a.handleSettingsKey(msg, key)
	}
	if a.page == state.PageAccounts && a.acctMode == accountsForm {
		return a.handleFormKey(msg, key)
	}

	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "tab":
		a.setPage((a.page + 1) % 4)
		return a, nil
	case "shift+tab":
		a.setPage((a.page + 3) % 4)
		return a, nil
	case "1":
		a.setPage(state.PageWeather)
		return a, nil
	case "2":
		a.setPage(state.PageNews)
		return a, nil
	case "3":
		a.setPage(state.PageSettings)
		return a, nil
	case "4":
		a.setPage(state.PageAccounts)
		return a, nil
	case "r":
		return a, a.refreshAllCmd()
	}

	switch a.page {
	case state.PageNews:
		return a.handleNewsKey(key)
	case state.PageAccounts:
		return a.handleAccountsKey(key)
	}
	return a, nil
}

func (a *App) handleNewsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if a.newsCursor > 0 {
			a.newsCursor--
		}
	case "down", "j":
		if a.newsCursor < len(a.news.Articles)-1 {
			a.newsCursor++
		}
	case "enter", "o":
		if a.newsCursor < len(a.news.Articles) {
			return a, openArticleCmd(a.news.Articles[a.newsCursor].URL)
		}
	}
	return a, nil
}

func (a *App) handleSettingsKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.setPage(state.PageWeather)
		return a, nil
	case "tab", "down":
		a.settingsFocus = (a.settingsFocus + 1) % 3
		a.focusSettings()
		return a, nil
	case "shift+tab", "up":
		a.settingsFocus = (a.settingsFocus + 2) % 3
		a.focusSettings()
		return a, nil
	case "enter":
		return a, a.saveSettings()
	}

	switch a.settingsFocus {
	case 0:
		var cmd tea.Cmd
		a.cityInput, cmd = a.cityInput.Update(msg)
		return a, cmd
	case 1:
		var cmd tea.Cmd
		a.topicInput, cmd = a.topicInput.Update(msg)
		return a, cmd
	default:
		if key == " " || key == "left" || key == "right" {
			a.settings.Celsius = !a.settings.Celsius
		}
		return a, nil
	}
}

// saveSettings persists the edited settings for the current user and
// re-triggers both refreshes so the panels reflect them immediately.
func (a *App) saveSettings() tea.Cmd {
	a.settings.City = a.cityInput.Value()
	a.settings.Topic = a.topicInput.Value()

	if err := a.cfg.Save(a.sync.CurrentUser(), a.settings); err != nil {
		a.settingsNote = "Save failed: " + err.Error()
		return nil
	}
	a.settingsNote = "Saved"
	return a.refreshAllCmd()
}

func (a *App) handleAccountsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if a.userCursor > 0 {
			a.userCursor--
		}
	case "down", "j":
		if a.userCursor < len(a.users)-1 {
			a.userCursor++
		}
	case "enter":
		if a.userCursor < len(a.users) {
			a.settings = a.session.Switch(a.users[a.userCursor])
			a.syncSettingsInputs()
			a.setPage(state.PageWeather)
			return a, a.refreshAllCmd()
		}
	case "n":
		a.openForm(true)
	case "l":
		a.openForm(false)
	case "d":
		if a.userCursor < len(a.users) {
			return a, a.deleteUser(a.users[a.userCursor])
		}
	case "g":
		a.session.Logout()
		a.settings = config.Default()
		a.syncSettingsInputs()
		a.setPage(state.PageWeather)
		return a, a.refreshAllCmd()
	}
	return a, nil
}

func (a *App) openForm(register bool) {
	a.acctMode = accountsForm
	a.registering = register
	a.authErr = ""
	a.nameInput.SetValue("")
	a.pinInput.SetValue("")
	a.formFocus = 0
	a.focusForm()
}

func (a *App) deleteUser(user string) tea.Cmd {
	wasActive, err := a.session.Delete(user)
	if err != nil {
		a.authErr = err.Error()
		return nil
	}
	a.users = a.session.Users()
	if a.userCursor >= len(a.users) {
		a.userCursor = max(0, len(a.users)-1)
	}
	if wasActive {
		// The session dropped to guest; render the guest dashboard.
		a.settings = config.Default()
		a.syncSettingsInputs()
		return a.refreshAllCmd()
	}
	return nil
}

func (a *App) handleFormKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.acctMode = accountsList
		a.authErr = ""
		return a, nil
	case "tab", "down", "shift+tab", "up":
		a.formFocus = 1 - a.formFocus
		a.focusForm()
		return a, nil
	case "enter":
		if a.authBusy {
			return a, nil
		}
		a.authBusy = true
		a.authErr = ""
		return a, a.authCmd(a.registering, a.nameInput.Value(), a.pinInput.Value())
	}

	var cmd tea.Cmd
	if a.formFocus == 0 {
		a.nameInput, cmd = a.nameInput.Update(msg)
	} else {
		a.pinInput, cmd = a.pinInput.Update(msg)
	}
	return a, cmd
}
