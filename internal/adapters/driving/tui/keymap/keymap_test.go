package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"next", km.Next, []string{"tab", "down"}},
		{"prev", km.Prev, []string{"shift+tab", "up"}},
		{"edit", km.Edit, []string{"enter"}},
		{"save", km.Save, []string{"ctrl+s"}},
		{"reset", km.Reset, []string{"ctrl+r"}},
		{"toggle", km.Toggle, []string{"t"}},
		{"update", km.Update, []string{"u"}},
		{"open", km.Open, []string{"o"}},
		{"confirm", km.Confirm, []string{"y"}},
		{"decline", km.Decline, []string{"n", "esc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				assert.Contains(t, tt.binding.Keys(), k)
			}
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.NotEmpty(t, help)
	assert.Equal(t, "q", help[len(help)-1].Help().Key)
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	var total int
	for _, col := range km.FullHelp() {
		total += len(col)
	}
	assert.Equal(t, 10, total)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+s", km.Save))
	assert.True(t, Matches("j", km.Next))
	assert.False(t, Matches("s", km.Save))
	assert.False(t, Matches("", km.Quit))
}
