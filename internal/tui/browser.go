package tui

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// openBrowser hands a link to the desktop's URL handler. Only web schemes are
// allowed; article URLs come from an external API and are not trusted.
func openBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q", u.Scheme)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}
