// Package clipboard provides clipboard operations via platform commands.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fwojciec/prettify"
)

// Ensure Command implements the Clipboard interface.
var _ prettify.Clipboard = (*Command)(nil)

// ErrUnavailable is returned when no clipboard command is installed.
var ErrUnavailable = errors.New("no clipboard command available")

// Command implements Clipboard by piping content into a command's stdin.
type Command struct {
	name string
	args []string
}

// NewCommand returns a clipboard that runs name with args.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: args}
}

// candidates lists clipboard commands in preference order for goos.
func candidates(goos string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{{"pbcopy"}}
	case "windows":
		return [][]string{{"clip"}}
	}
	return [][]string{
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	}
}

// Detect returns the first clipboard command found on PATH.
func Detect() (*Command, error) {
	return detect(runtime.GOOS, exec.LookPath)
}

func detect(goos string, lookPath func(string) (string, error)) (*Command, error) {
	for _, c := range candidates(goos) {
		if _, err := lookPath(c[0]); err == nil {
			return NewCommand(c[0], c[1:]...), nil
		}
	}
	return nil, ErrUnavailable
}

// Name returns the command line used to copy.
func (c *Command) Name() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// Copy writes content to the system clipboard.
func (c *Command) Copy(content string) error {
	cmd := exec.Command(c.name, c.args...)
	cmd.Stdin = strings.NewReader(content)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
