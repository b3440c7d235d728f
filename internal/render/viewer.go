package render

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Viewer hands documents to an external PDF viewer.
type Viewer struct {
	// App overrides the platform default opener when set.
	App string

	start func(name string, args ...string) error
}

// NewViewer returns a viewer that launches app, or the platform opener when
// app is empty.
func NewViewer(app string) *Viewer {
	return &Viewer{App: app, start: startDetached}
}

// Open shows target, a local path or a viewer URL. It returns once the
// viewer process has started.
func (v *Viewer) Open(target string) error {
	name, args := Command(runtime.GOOS, v.App, target)
	start := v.start
	if start == nil {
		start = startDetached
	}
	if err := start(name, args...); err != nil {
		return &RenderError{Path: target, Err: fmt.Errorf("opening with %q: %w", name, err)}
	}
	return nil
}

// Command returns the program and arguments used to open target on goos.
func Command(goos, app, target string) (string, []string) {
	if app != "" {
		return app, []string{target}
	}
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	default: // linux, freebsd, etc.
		return "xdg-open", []string{target}
	}
}

func startDetached(name string, args ...string) error {
	c := exec.Command(name, args...)
	if err := c.Start(); err != nil {
		return err
	}
	go func() { _ = c.Wait() }()
	return nil
}
