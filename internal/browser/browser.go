package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/pders01/newsdesk/internal/config"
)

// Opener hands article links to the system browser.
type Opener struct {
	command string
	start   func(name string, args ...string) error
}

// NewOpener uses cfg.UI.Opener, falling back to the platform default.
func NewOpener(cfg *config.Config) *Opener {
	command := ""
	if cfg != nil {
		command = cfg.UI.Opener
	}
	if command == "" {
		command = defaultOpener()
	}
	return &Opener{command: command, start: startDetached}
}

// Open launches the browser on rawURL. Only http and https are accepted.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without host")
	}

	if o.command == "rundll32" {
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return o.start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	}
	return o.start(o.command, rawURL)
}

func defaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "rundll32"
	default:
		return "xdg-open"
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
