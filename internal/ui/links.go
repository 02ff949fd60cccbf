package ui

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/atotto/clipboard"

	"github.com/raphi011/abt/internal/cmd"
)

// openTimeout bounds a launcher that does not return after handing the
// link to the browser.
const openTimeout = 10 * time.Second

// OpenURL opens url in the default browser.
func OpenURL(url string) error {
	name, args := browserCommand(url)
	if !cmd.Available(name) {
		return fmt.Errorf("open %s: %s not found", url, name)
	}
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := cmd.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

func browserCommand(url string) (string, []string) {
	switch {
	case isWSL():
		return "wslview", []string{url}
	case runtime.GOOS == "darwin":
		return "open", []string{url}
	case runtime.GOOS == "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

func isWSL() bool {
	_, err := os.Stat("/proc/sys/fs/binfmt_misc/WSLInterop")
	return err == nil
}

// CopyURL writes url to the system clipboard.
func CopyURL(url string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("copy %s: no clipboard utility found", url)
	}
	if err := clipboard.WriteAll(url); err != nil {
		return fmt.Errorf("copy %s: %w", url, err)
	}
	return nil
}
