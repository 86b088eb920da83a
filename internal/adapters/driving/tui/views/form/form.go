// Package form provides the grouped field form of the dashboard.
package form

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bootman/internal/core/domain"
)

// View is the field form. Fields are shown in schema order under their group
// headers. One field is selected at a time; enter starts editing it.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	inputs []*input.FieldInput

	selected int
	editing  bool

	width  int
	height int
}

// NewView creates an empty form.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keymap: km}
}

// SetValues replaces the form content with freshly loaded values. Edits in
// progress are discarded.
func (v *View) SetValues(values []domain.FieldValue) {
	if v.editing && v.selected < len(v.inputs) {
		v.inputs[v.selected].Blur()
	}
	v.editing = false

	v.inputs = make([]*input.FieldInput, len(values))
	for i, fv := range values {
		v.inputs[i] = input.NewFieldInput(v.styles, fv.Field, fv.Value)
	}
	if v.selected >= len(v.inputs) {
		v.selected = 0
	}
}

// Update handles key presses. The form consumes navigation and editing keys
// and reports whether it used the message.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(v.inputs) == 0 {
		return v, nil, false
	}
	k := keyMsg.String()

	if v.editing {
		switch k {
		case "enter":
			v.stopEditing()
			return v, nil, true
		case "esc":
			v.inputs[v.selected].Revert()
			v.stopEditing()
			return v, nil, true
		case "tab":
			v.stopEditing()
			v.move(1)
			return v, v.startEditing(), true
		case "shift+tab":
			v.stopEditing()
			v.move(-1)
			return v, v.startEditing(), true
		}
		var cmd tea.Cmd
		v.inputs[v.selected], cmd = v.inputs[v.selected].Update(msg)
		return v, cmd, true
	}

	switch {
	case keymap.Matches(k, v.keymap.Next):
		v.move(1)
		return v, nil, true
	case keymap.Matches(k, v.keymap.Prev):
		v.move(-1)
		return v, nil, true
	case keymap.Matches(k, v.keymap.Edit):
		return v, v.startEditing(), true
	}
	return v, nil, false
}

// View renders the form.
func (v *View) View() string {
	if len(v.inputs) == 0 {
		return v.styles.Muted.Render("No fields loaded.")
	}

	var b strings.Builder
	group := ""
	for i, in := range v.inputs {
		if g := in.Field().Group; g != group {
			group = g
			b.WriteString(v.styles.Group.Render(g))
			b.WriteByte('\n')
		}
		b.WriteString("  ")
		b.WriteString(in.View(i == v.selected))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// Values returns every field's current display value by key.
func (v *View) Values() map[string]string {
	out := make(map[string]string, len(v.inputs))
	for _, in := range v.inputs {
		out[in.Field().Key] = in.Value()
	}
	return out
}

// Dirty reports whether any field differs from the loaded document.
func (v *View) Dirty() bool {
	for _, in := range v.inputs {
		if in.Changed() {
			return true
		}
	}
	return false
}

// Editing reports whether a field is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Selected returns the index of the selected field.
func (v *View) Selected() int {
	return v.selected
}

// SetDimensions sets the form size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Height returns the number of lines the form renders.
func (v *View) Height() int {
	return strings.Count(v.View(), "\n") + 1
}

func (v *View) move(delta int) {
	n := len(v.inputs)
	v.selected = ((v.selected+delta)%n + n) % n
}

func (v *View) startEditing() tea.Cmd {
	v.editing = true
	return v.inputs[v.selected].Focus()
}

func (v *View) stopEditing() {
	v.editing = false
	v.inputs[v.selected].Blur()
}
