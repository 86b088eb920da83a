package process

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/custodia-labs/bootman/internal/core/ports/driven"
)

// Ensure BrowserOpener implements the interface.
var _ driven.URLOpener = (*BrowserOpener)(nil)

// BrowserOpener opens URLs with the platform's default browser.
type BrowserOpener struct {
	goos  string
	start func(name string, args ...string) error
}

// NewBrowserOpener creates an opener for the running platform.
func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{goos: runtime.GOOS, start: startCommand}
}

// Open opens url without waiting for the browser.
func (b *BrowserOpener) Open(url string) error {
	switch b.goos {
	case "darwin":
		return b.start("open", url)
	case "linux", "freebsd", "openbsd":
		return b.start("xdg-open", url)
	case "windows":
		return b.start("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", b.goos)
	}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}
