package clipboard

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"
)

func lookPathFor(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		want      []string
		wantErr   error
	}{
		{"macOS", "darwin", []string{"pbcopy"}, []string{"pbcopy"}, nil},
		{"wayland first", "linux", []string{"xclip", "wl-copy"}, []string{"wl-copy"}, nil},
		{"xclip", "linux", []string{"xclip", "xsel"}, []string{"xclip", "-selection", "clipboard"}, nil},
		{"xsel fallback", "linux", []string{"xsel"}, []string{"xsel", "--clipboard", "--input"}, nil},
		{"nothing installed", "linux", nil, nil, ErrClipboardUnavailable},
		{"unknown platform", "plan9", []string{"pbcopy"}, nil, ErrClipboardUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := command(tt.goos, lookPathFor(tt.installed...))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("command() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("command() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCopy(t *testing.T) {
	if !IsAvailable() {
		t.Skip("clipboard not available on this system")
	}
	if err := Copy(context.Background(), "[[hub_Smith2021_StudyDeepNetworks]]"); err != nil {
		t.Skipf("clipboard present but not usable here: %v", err)
	}
}
