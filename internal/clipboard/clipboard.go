// Package clipboard copies text to the system clipboard through the
// platform's command-line tools.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard tool is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// candidates lists the clipboard tools tried per platform, in order.
var candidates = map[string][][]string{
	"darwin":  {{"pbcopy"}},
	"linux":   {{"wl-copy"}, {"xclip", "-selection", "clipboard"}, {"xsel", "--clipboard", "--input"}},
	"freebsd": {{"xclip", "-selection", "clipboard"}, {"xsel", "--clipboard", "--input"}},
	"windows": {{"clip"}},
}

// command returns the argv of the first installed tool for goos.
func command(goos string, lookPath func(string) (string, error)) ([]string, error) {
	for _, argv := range candidates[goos] {
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether a clipboard tool is installed.
func IsAvailable() bool {
	_, err := command(runtime.GOOS, exec.LookPath)
	return err == nil
}

// Copy places text on the system clipboard.
func Copy(ctx context.Context, text string) error {
	argv, err := command(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
