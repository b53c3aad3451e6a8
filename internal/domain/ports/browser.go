package ports

// BrowserLauncher opens the web UI for `serve --open`
type BrowserLauncher interface {
	// Launch opens a URL in the configured or detected browser
	Launch(url string, noOpen bool) error
	// Detect returns the name of the browser that Launch would use
	Detect() (string, error)
}
