// Package browser opens trailer and catalog links in the user's browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/naveenspark/moviedash/internal/logger"
)

// start launches the platform opener. Replaced in tests.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens an http or https URL in the user's default browser.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser.Open: refusing to open %q", rawURL)
	}

	logger.Log.WithField("url", rawURL).Debug("opening browser")
	switch runtime.GOOS {
	case "darwin":
		return start("open", rawURL)
	case "linux", "freebsd", "openbsd":
		return start("xdg-open", rawURL)
	case "windows":
		return start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("browser.Open: unsupported OS: %s", runtime.GOOS)
	}
}
