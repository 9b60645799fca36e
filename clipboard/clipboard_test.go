package clipboard_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/fwojciec/prettify/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookPath(found ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, f := range found {
			if f == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		goos  string
		found []string
		want  string
	}{
		{"macOS", "darwin", []string{"pbcopy"}, "pbcopy"},
		{"wayland preferred", "linux", []string{"xclip", "wl-copy"}, "wl-copy"},
		{"xclip", "linux", []string{"xclip", "xsel"}, "xclip -selection clipboard"},
		{"xsel", "freebsd", []string{"xsel"}, "xsel --clipboard --input"},
		{"windows", "windows", []string{"clip"}, "clip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := clipboard.DetectFor(tt.goos, lookPath(tt.found...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}

	t.Run("none installed", func(t *testing.T) {
		t.Parallel()

		_, err := clipboard.DetectFor("linux", lookPath())
		assert.True(t, errors.Is(err, clipboard.ErrUnavailable))
	})
}

func TestCommand_Copy(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out := filepath.Join(t.TempDir(), "clip")
	c := clipboard.NewCommand("sh", "-c", `cat > "$0"`, out)

	require.NoError(t, c.Copy("copied text\n"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "copied text\n", string(data))
}

func TestCommand_CopyFailure(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	err := clipboard.NewCommand("sh", "-c", "echo denied >&2; exit 1").Copy("x")

	assert.ErrorContains(t, err, "denied")
}
