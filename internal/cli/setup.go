package cli

import (
	"fmt"
	"time"

	"github.com/mpavel/homescreen/internal/auth"
	"github.com/mpavel/homescreen/internal/config"
	"github.com/mpavel/homescreen/internal/geo"
	"github.com/mpavel/homescreen/internal/news"
	"github.com/mpavel/homescreen/internal/refresh"
	"github.com/mpavel/homescreen/internal/session"
	"github.com/mpavel/homescreen/internal/state"
	"github.com/mpavel/homescreen/internal/store"
	"github.com/mpavel/homescreen/internal/weather"
)

// services is the wired application graph shared by the TUI and the one-shot
// commands.
type services struct {
	auth    *auth.Service
	cfg     *config.Service
	store   *store.Store
	sync    *state.Synchronizer
	session *session.Manager
	orch    *refresh.Orchestrator
}

// buildServices constructs every service against the given directories.
// Empty directories fall back to the XDG defaults.
func buildServices(configDir, cacheDir string, ttl time.Duration) (*services, error) {
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}
	if cacheDir == "" {
		cacheDir = config.DefaultCacheDir()
	}

	a, err := auth.New(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	c, err := config.NewService(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config store: %w", err)
	}
	st, err := store.New(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("opening cache store: %w", err)
	}

	syn := state.New(state.AppState{})
	return &services{
		auth:    a,
		cfg:     c,
		store:   st,
		sync:    syn,
		session: session.NewManager(a, c, st, syn),
		orch:    refresh.New(st, syn, geo.NewClient(), weather.NewClient(), news.NewClient(), ttl),
	}, nil
}
