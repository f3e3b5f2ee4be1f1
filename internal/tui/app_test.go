package tui

import (
	"context"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavel/homescreen/internal/auth"
	"github.com/mpavel/homescreen/internal/config"
	"github.com/mpavel/homescreen/internal/news"
	"github.com/mpavel/homescreen/internal/refresh"
	"github.com/mpavel/homescreen/internal/session"
	"github.com/mpavel/homescreen/internal/state"
	"github.com/mpavel/homescreen/internal/store"
)

type fakeRefresher struct {
	weatherCalls atomic.Int32
	newsCalls    atomic.Int32
	lastCity     string
	lastTopic    string
	lastCelsius  bool
}

func (f *fakeRefresher) Weather(_ context.Context, city string, celsius bool) {
	f.weatherCalls.Add(1)
	f.lastCity = city
	f.lastCelsius = celsius
}

func (f *fakeRefresher) News(_ context.Context, topic string) {
	f.newsCalls.Add(1)
	f.lastTopic = topic
}

func newTestApp(t *testing.T) (*App, *fakeRefresher, *state.Synchronizer) {
	t.Helper()

	a, err := auth.New(t.TempDir())
	require.NoError(t, err)
	c, err := config.NewService(t.TempDir())
	require.NoError(t, err)
	s, err := store.New(t.TempDir())
	require.NoError(t, err)

	syn := state.New(state.AppState{})
	f := &fakeRefresher{}
	app := NewApp(Options{
		Session:   session.NewManager(a, c, s, syn),
		Config:    c,
		Sync:      syn,
		Refresher: f,
		Settings:  config.Default(),
		Version:   "test",
	})
	return app, f, syn
}

// run drains a command tree the way the runtime would, feeding resulting
// messages back into the model.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(t, app, c)
		}
		return
	}
	m, next := app.Update(msg)
	*app = *m.(*App)
	run(t, app, next)
}

func press(app *App, key tea.KeyMsg) tea.Cmd {
	m, cmd := app.Update(key)
	*app = *m.(*App)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSplashDismissTriggersRefresh(t *testing.T) {
	app, f, _ := newTestApp(t)
	require.True(t, app.splash)

	m, cmd := app.Update(splashDoneMsg{})
	app = m.(*App)
	assert.False(t, app.splash)
	run(t, app, cmd)

	assert.EqualValues(t, 1, f.weatherCalls.Load())
	assert.EqualValues(t, 1, f.newsCalls.Load())
	assert.Equal(t, config.Default().City, f.lastCity)
	assert.True(t, f.lastCelsius)

	// A late timer message after a keypress dismissal is a no-op.
	m, cmd = app.Update(splashDoneMsg{})
	app = m.(*App)
	assert.Nil(t, cmd)
	assert.EqualValues(t, 1, f.weatherCalls.Load())
}

func TestRefreshMessagesReduceIntoViews(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.splash = false

	rows := []store.WeatherRow{{Time: "Now", Temp: "20°C"}}
	m, _ := app.Update(refresh.WeatherRows{Rows: rows, Status: "Updated (°C)"})
	app = m.(*App)
	assert.Equal(t, rows, app.weather.Rows)
	assert.Equal(t, "Updated (°C)", app.weather.Status)

	m, _ = app.Update(refresh.WeatherFailure{Err: "boom"})
	app = m.(*App)
	assert.Equal(t, "Failed to load: boom", app.weather.Status)
	assert.Equal(t, rows, app.weather.Rows, "a failure degrades the status but keeps rendered rows")
}

func TestNewsCursorClampsWhenListShrinks(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.splash = false
	app.setPage(state.PageNews)

	three := []news.Article{
		{NewsRow: store.NewsRow{Title: "a", URL: "https://a"}},
		{NewsRow: store.NewsRow{Title: "b", URL: "https://b"}},
		{NewsRow: store.NewsRow{Title: "c", URL: "https://c"}},
	}
	m, _ := app.Update(refresh.NewsRows{Articles: three, Status: "Updated"})
	app = m.(*App)

	press(app, runes("j"))
	press(app, runes("j"))
	assert.Equal(t, 2, app.newsCursor)

	m, _ = app.Update(refresh.NewsRows{Articles: three[:1], Status: "Updated"})
	app = m.(*App)
	assert.Equal(t, 0, app.newsCursor)
}

func TestOpenArticleRequiresSelection(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.splash = false
	app.setPage(state.PageNews)

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "enter on an empty list opens nothing")
}

func TestClockTickUpdatesSharedState(t *testing.T) {
	app, _, syn := newTestApp(t)

	m, cmd := app.Update(clockTickMsg{})
	app = m.(*App)
	assert.NotNil(t, cmd, "the clock reschedules itself")
	assert.Equal(t, app.clock, syn.Snapshot().ClockText)
}

func TestPageNavigation(t *testing.T) {
	app, _, syn := newTestApp(t)
	app.splash = false

	press(app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, state.PageNews, app.page)
	assert.Equal(t, state.PageNews, syn.Snapshot().Page)

	press(app, runes("4"))
	assert.Equal(t, state.PageAccounts, app.page)

	press(app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, state.PageWeather, app.page, "tab wraps past the last page")
}

func TestSettingsSavePersistsAndRetriggers(t *testing.T) {
	app, f, syn := newTestApp(t)
	app.splash = false
	app.setPage(state.PageSettings)

	app.cityInput.SetValue("Cluj-Napoca")
	app.topicInput.SetValue("golang")
	app.settingsFocus = 2
	app.focusSettings()
	press(app, runes(" "))
	assert.False(t, app.settings.Celsius)

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.Equal(t, "Saved", app.settingsNote)
	saved := app.cfg.Load(syn.CurrentUser())
	assert.Equal(t, "Cluj-Napoca", saved.City)
	assert.Equal(t, "golang", saved.Topic)
	assert.False(t, saved.Celsius)

	assert.EqualValues(t, 1, f.weatherCalls.Load())
	assert.Equal(t, "Cluj-Napoca", f.lastCity)
	assert.Equal(t, "golang", f.lastTopic)
	assert.False(t, f.lastCelsius)
}

func TestRegisterFlow(t *testing.T) {
	app, f, syn := newTestApp(t)
	app.splash = false
	app.setPage(state.PageAccounts)

	press(app, runes("n"))
	require.Equal(t, accountsForm, app.acctMode)
	assert.True(t, app.registering)

	app.nameInput.SetValue("ana")
	app.pinInput.SetValue("1234")
	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.authBusy)

	run(t, app, cmd)

	assert.False(t, app.authBusy)
	assert.Empty(t, app.authErr)
	assert.Equal(t, "ana", syn.CurrentUser())
	assert.Equal(t, state.PageWeather, app.page)
	assert.Equal(t, []string{"ana"}, app.users)
	assert.EqualValues(t, 1, f.weatherCalls.Load(), "a fresh login refreshes the dashboard")
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	app, _, syn := newTestApp(t)
	app.splash = false

	_, err := app.session.Register("ana", "1234")
	require.NoError(t, err)
	app.session.Logout()

	app.setPage(state.PageAccounts)
	press(app, runes("l"))
	app.nameInput.SetValue("ana")
	app.pinInput.SetValue("9999")

	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.Equal(t, accountsForm, app.acctMode, "a failed login keeps the form open")
	assert.Contains(t, app.authErr, auth.ErrInvalidPin.Error())
	assert.Equal(t, state.Guest, syn.CurrentUser())
}

func TestDeleteActiveUserDropsToGuest(t *testing.T) {
	app, f, syn := newTestApp(t)
	app.splash = false

	_, err := app.session.Register("ana", "1234")
	require.NoError(t, err)
	app.setPage(state.PageAccounts)
	require.Equal(t, []string{"ana"}, app.users)

	cmd := press(app, runes("d"))
	run(t, app, cmd)

	assert.Empty(t, app.users)
	assert.Equal(t, state.Guest, syn.CurrentUser())
	assert.Equal(t, config.Default(), app.settings)
	assert.EqualValues(t, 1, f.weatherCalls.Load(), "dropping to guest re-renders the guest dashboard")
}

func TestSwitchUserLoadsTheirSettings(t *testing.T) {
	app, f, _ := newTestApp(t)
	app.splash = false

	_, err := app.session.Register("ana", "1")
	require.NoError(t, err)
	require.NoError(t, app.cfg.Save("ana", config.Settings{City: "Brasov", Topic: "rust", Celsius: true}))
	app.session.Logout()

	app.setPage(state.PageAccounts)
	cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.Equal(t, "Brasov", app.settings.City)
	assert.Equal(t, state.PageWeather, app.page)
	assert.Equal(t, "Brasov", f.lastCity)
}

func TestViewRendersWithoutSize(t *testing.T) {
	app, _, _ := newTestApp(t)

	assert.Contains(t, app.View(), "homescreen", "splash renders before a WindowSizeMsg arrives")

	app.splash = false
	m, _ := app.Update(refresh.WeatherRows{
		Rows:   []store.WeatherRow{{Time: "Now", Temp: "20°C", Summary: "Clear sky", FeelsLike: "19°C", Precipitation: "5% precipitation"}},
		Status: "Updated (°C)",
	})
	app = m.(*App)
	out := app.View()
	assert.Contains(t, out, "Updated (°C)")
	assert.Contains(t, out, "Clear sky")

	app.setPage(state.PageAccounts)
	assert.Contains(t, app.View(), "No accounts yet")
}
