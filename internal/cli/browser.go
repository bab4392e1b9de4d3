package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"

	"readinglist/pkg/logging"
)

// OpenBrowser opens rawURL in the default web browser. It is a variable so
// tests can replace it.
var OpenBrowser = func(rawURL string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	// The browser keeps running after we return.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// BrowserNavigator carries out redirects for a terminal user: it prints the
// target and, unless disabled, opens it in a browser.
type BrowserNavigator struct {
	out         io.Writer
	openBrowser bool
}

// NewBrowserNavigator writes redirect notices to out.
func NewBrowserNavigator(out io.Writer, openBrowser bool) *BrowserNavigator {
	return &BrowserNavigator{out: out, openBrowser: openBrowser}
}

// Navigate implements dispatch.Navigator.
func (n *BrowserNavigator) Navigate(_ context.Context, target *url.URL) error {
	if target == nil {
		return nil
	}
	if mae := ManagedAuthErrorFrom(target); mae != nil {
		fmt.Fprintln(n.out, FormatManagedAuthError(mae))
		return mae
	}

	fmt.Fprintf(n.out, "Sign in required. Open this URL to continue:\n  %s\n", target.String())
	if !n.openBrowser {
		return nil
	}
	if err := OpenBrowser(target.String()); err != nil {
		logging.Warn("CLI", "Could not open browser: %v", err)
	}
	return nil
}
