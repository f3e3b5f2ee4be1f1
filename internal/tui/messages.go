package tui

import (
	"time"

	"github.com/mpavel/homescreen/internal/config"
)

// clockTickMsg fires once a second to drive the header clock.
type clockTickMsg time.Time

// splashDoneMsg hides the startup splash and triggers the first refresh.
type splashDoneMsg struct{}

// authDoneMsg carries the result of an off-loop login or register attempt.
type authDoneMsg struct {
	settings config.Settings
	err      error
}

// browserErrMsg reports a failed attempt to open an article link.
type browserErrMsg struct {
	err error
}
