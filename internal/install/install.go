// Package install fetches and unpacks a browser build ahead of a run.
// Installation failure is a setup error: the run aborts rather than
// benchmarking a stale browser.
package install

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Installation is an unpacked browser build on disk.
type Installation struct {
	Dir    string
	Binary string
}

// Firefox downloads the installer at installerURL into dir and unpacks it
// with the platform installer tool, returning the path to the browser
// binary.
func Firefox(ctx context.Context, installerURL, dir string) (*Installation, error) {
	slog.Debug("installing firefox", "url", installerURL, "dir", dir)

	installerPath := filepath.Join(dir, installerName())
	if err := download(ctx, installerURL, installerPath); err != nil {
		return nil, fmt.Errorf("download installer: %w", err)
	}

	out, err := exec.CommandContext(ctx, "mozinstall", "-d", dir, installerPath).Output()
	if err != nil {
		return nil, fmt.Errorf("run installer: %w", err)
	}

	binary := strings.TrimSpace(string(out))
	if binary == "" {
		binary = defaultBinaryPath(dir)
	}
	if _, err := os.Stat(binary); err != nil {
		return nil, fmt.Errorf("installation produced no binary at %s: %w", binary, err)
	}

	return &Installation{Dir: dir, Binary: binary}, nil
}

// Cleanup removes the unpacked build.
func (i *Installation) Cleanup() error {
	if err := os.RemoveAll(i.Dir); err != nil {
		return fmt.Errorf("remove installation dir: %w", err)
	}
	return nil
}

func installerName() string {
	switch runtime.GOOS {
	case "darwin":
		return "firefox.dmg"
	case "windows":
		return "firefox.exe"
	default:
		return "firefox.tar.xz"
	}
}

func defaultBinaryPath(dir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(dir, "Firefox.app", "Contents", "MacOS", "firefox")
	case "windows":
		return filepath.Join(dir, "firefox", "firefox.exe")
	default:
		return filepath.Join(dir, "firefox", "firefox")
	}
}

func download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
