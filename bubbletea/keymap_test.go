package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/prettify/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_HasExpectedBindings(t *testing.T) {
	t.Parallel()

	km := bubbletea.DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"k scrolls up", runes("k"), km.Up},
		{"arrow up scrolls up", tea.KeyMsg{Type: tea.KeyUp}, km.Up},
		{"j scrolls down", runes("j"), km.Down},
		{"arrow down scrolls down", tea.KeyMsg{Type: tea.KeyDown}, km.Down},
		{"ctrl+u", tea.KeyMsg{Type: tea.KeyCtrlU}, km.HalfPageUp},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}, km.HalfPageDown},
		{"g", runes("g"), km.GotoTop},
		{"G", runes("G"), km.GotoBottom},
		{"r toggles raw", runes("r"), km.ToggleRaw},
		{"tab toggles raw", tea.KeyMsg{Type: tea.KeyTab}, km.ToggleRaw},
		{"y copies", runes("y"), km.Copy},
		{"q quits", runes("q"), km.Quit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	t.Parallel()

	var keys []string
	for _, b := range bubbletea.DefaultKeyMap().ShortHelp() {
		keys = append(keys, b.Help().Key)
	}

	assert.Equal(t, []string{"j/k", "r", "y", "q"}, keys)
}
