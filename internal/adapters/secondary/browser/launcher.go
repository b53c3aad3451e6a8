package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// ErrNoBrowser is returned when no candidate browser is installed
var ErrNoBrowser = errors.New("no supported browsers found on this system")

// Launcher opens the deckgen web UI for `serve --open`
type Launcher struct {
	browsers  []Browser
	preferred string
	lookPath  func(file string) (string, error)
	start     func(name string, args ...string) error
}

// Browser represents a browser configuration
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// NewLauncher creates a launcher. preferred names a browser from the platform
// list ("chrome", "firefox", ...); empty or "default" picks the first one found.
func NewLauncher(preferred string) *Launcher {
	return &Launcher{
		browsers:  detectBrowsers(runtime.GOOS),
		preferred: preferred,
		lookPath:  exec.LookPath,
		start:     startDetached,
	}
}

// Launch opens a URL. Only absolute http and https URLs are accepted since
// the URL ends up on a command line.
func (l *Launcher) Launch(rawURL string, noOpen bool) error {
	if noOpen {
		return nil
	}

	if err := validateURL(rawURL); err != nil {
		return err
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	if err := l.start(browser.Command, browser.Args(rawURL)...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}
	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

// selectBrowser returns the preferred browser when it is installed, else the
// first installed candidate
func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, errors.New("no browsers detected for this platform")
	}

	var fallback *Browser
	for i := range l.browsers {
		candidate := &l.browsers[i]
		if _, err := l.lookPath(candidate.Command); err != nil {
			continue
		}
		if l.prefers(candidate.Name) {
			return candidate, nil
		}
		if fallback == nil {
			fallback = candidate
		}
	}

	if fallback == nil {
		return nil, ErrNoBrowser
	}
	return fallback, nil
}

func (l *Launcher) prefers(name string) bool {
	preferred := strings.TrimSpace(l.preferred)
	if preferred == "" || strings.EqualFold(preferred, "default") {
		return false
	}
	return strings.EqualFold(preferred, name)
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("refusing to open non-http URL %q", rawURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}
	return nil
}

// startDetached starts the command without waiting for the browser to exit
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the fixed platform list
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func urlOnly(url string) []string {
	return []string{url}
}

// detectBrowsers returns the candidate browsers for a platform in order of
// preference
func detectBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		openWith := func(app string) func(string) []string {
			return func(url string) []string { return []string{"-a", app, url} }
		}
		return []Browser{
			{Name: "Default", Command: "open", Args: urlOnly},
			{Name: "Chrome", Command: "open", Args: openWith("Google Chrome")},
			{Name: "Safari", Command: "open", Args: openWith("Safari")},
			{Name: "Firefox", Command: "open", Args: openWith("Firefox")},
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []Browser{
			{Name: "Default", Command: "xdg-open", Args: urlOnly},
			{Name: "Chrome", Command: "google-chrome", Args: urlOnly},
			{Name: "Chromium", Command: "chromium", Args: urlOnly},
			{Name: "Firefox", Command: "firefox", Args: urlOnly},
		}
	case "windows":
		return []Browser{
			{
				Name:    "Default",
				Command: "rundll32",
				Args: func(url string) []string {
					return []string{"url.dll,FileProtocolHandler", url}
				},
			},
			{
				Name:    "Chrome",
				Command: "cmd",
				Args: func(url string) []string {
					return []string{"/c", "start", "", "chrome", url}
				},
			},
			{
				Name:    "Edge",
				Command: "cmd",
				Args: func(url string) []string {
					return []string{"/c", "start", "", "msedge", url}
				},
			},
		}
	default:
		return []Browser{}
	}
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)
