// Package session coordinates the account lifecycle across the credential
// service, the per-user config service, the freshness store, and the state
// synchronizer. Account deletion is a best-effort cascade: a partial failure
// can leave orphaned files but never touches another user's namespace.
package session

import (
	"github.com/mpavel/homescreen/internal/auth"
	"github.com/mpavel/homescreen/internal/config"
	"github.com/mpavel/homescreen/internal/logging"
	"github.com/mpavel/homescreen/internal/state"
	"github.com/mpavel/homescreen/internal/store"
)

// Manager ties the account-scoped services together.
type Manager struct {
	auth  *auth.Service
	cfg   *config.Service
	store *store.Store
	state *state.Synchronizer
}

// NewManager creates a session manager.
func NewManager(a *auth.Service, c *config.Service, s *store.Store, st *state.Synchronizer) *Manager {
	return &Manager{auth: a, cfg: c, store: s, state: st}
}

// Login verifies credentials, activates the user, and returns their
// settings. Verification is CPU-bound; call it off the presentation loop.
func (m *Manager) Login(user, pin string) (config.Settings, error) {
	if err := m.auth.Verify(user, pin); err != nil {
		return config.Settings{}, err
	}
	m.state.SetUser(&user)
	return m.cfg.Load(user), nil
}

// Register creates an account and logs it in, mirroring Login.
func (m *Manager) Register(user, pin string) (config.Settings, error) {
	if err := m.auth.Register(user, pin); err != nil {
		return config.Settings{}, err
	}
	m.state.SetUser(&user)
	return m.cfg.Load(user), nil
}

// Logout drops back to the guest namespace.
func (m *Manager) Logout() {
	m.state.SetUser(nil)
}

// Switch activates an already-registered user without re-verification and
// returns their settings.
func (m *Manager) Switch(user string) config.Settings {
	m.state.SetUser(&user)
	return m.cfg.Load(user)
}

// Users lists registered accounts. A read failure degrades to an empty list.
func (m *Manager) Users() []string {
	names, err := m.auth.List()
	if err != nil {
		logger := logging.L()
		logger.Warn().Err(err).Msg("listing users failed")
		return nil
	}
	return names
}

// Delete removes user's credentials, config, and cache as one logical
// transaction. When the deleted user is the active one, the session drops to
// logged-out guest. Returns whether the user was the active one.
func (m *Manager) Delete(user string) (wasActive bool, err error) {
	err = m.auth.Delete(user)

	if cfgErr := m.cfg.DeleteUser(user); cfgErr != nil {
		logger := logging.L()
		logger.Warn().Str("user", user).Err(cfgErr).Msg("config namespace delete failed")
	}
	if cacheErr := m.store.DeleteUser(user); cacheErr != nil {
		logger := logging.L()
		logger.Warn().Str("user", user).Err(cacheErr).Msg("cache namespace delete failed")
	}

	if m.state.CurrentUser() == user {
		m.Logout()
		wasActive = true
	}
	return wasActive, err
}
