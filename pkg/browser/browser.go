// Package browser opens the sentiboard dashboard in the system browser.
package browser

import (
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"runtime"
)

// start launches the browser command; replaced in tests.
var start = func(cmd *exec.Cmd) error { return cmd.Start() }

// Open opens the specified URL in the default browser.
// It validates the URL before passing it to the system browser to prevent command injection.
func Open(urlString string) error {
	cmd, err := command(runtime.GOOS, urlString)
	if err != nil {
		return err
	}
	return start(cmd)
}

func command(goos, urlString string) (*exec.Cmd, error) {
	// Validate URL to prevent command injection (fixes G204/CWE-78)
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Whitelist allowed schemes to prevent malicious URLs
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsedURL.Scheme)
	}

	switch goos {
	case "linux":
		return exec.Command("xdg-open", urlString), nil // #nosec G204 -- URL validated above
	case "darwin":
		return exec.Command("open", urlString), nil // #nosec G204 -- URL validated above
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", urlString), nil // #nosec G204 -- URL validated above
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// LocalURL builds the URL a browser on this machine uses to reach a server listening on addr.
// Wildcard and empty hosts resolve to the loopback address.
func LocalURL(addr, path string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}

	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: path}
	return u.String(), nil
}
