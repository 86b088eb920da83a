// Package input provides the editable field row of the dashboard form.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bootman/internal/core/domain"
)

// FieldInput wraps a bubbles textinput for one schema field.
// Secret fields are echoed as asterisks.
type FieldInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	field     domain.FieldDescriptor
	loaded    string
}

// NewFieldInput creates an input for field holding value.
func NewFieldInput(s *styles.Styles, field domain.FieldDescriptor, value string) *FieldInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = field.Default
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = ""
	if field.Secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	ti.SetValue(value)

	return &FieldInput{
		textinput: ti,
		styles:    s,
		field:     field,
		loaded:    value,
	}
}

// Update forwards messages to the text input while it is focused.
func (f *FieldInput) Update(msg tea.Msg) (*FieldInput, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label and value. selected highlights the row.
func (f *FieldInput) View(selected bool) string {
	label := f.styles.Label.Render(f.field.Label)
	if selected {
		label = f.styles.Selected.Render(f.field.Label)
		label = lipgloss.NewStyle().Width(f.styles.Label.GetWidth()).Render(label)
	}

	value := f.textinput.View()
	if f.textinput.Focused() {
		value = f.styles.InputField.Render(value)
	} else if f.Changed() {
		value += f.styles.Warning.Render(" *")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, value)
}

// Field returns the schema field this input edits.
func (f *FieldInput) Field() domain.FieldDescriptor {
	return f.field
}

// Value returns the current input value.
func (f *FieldInput) Value() string {
	return f.textinput.Value()
}

// SetValue replaces the value and marks it as loaded from the document.
func (f *FieldInput) SetValue(value string) {
	f.textinput.SetValue(value)
	f.loaded = value
}

// Changed reports whether the value differs from the one last loaded.
func (f *FieldInput) Changed() bool {
	return f.textinput.Value() != f.loaded
}

// Revert restores the value last loaded.
func (f *FieldInput) Revert() {
	f.textinput.SetValue(f.loaded)
}

// Focus starts editing.
func (f *FieldInput) Focus() tea.Cmd {
	f.textinput.CursorEnd()
	return f.textinput.Focus()
}

// Blur stops editing.
func (f *FieldInput) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is being edited.
func (f *FieldInput) Focused() bool {
	return f.textinput.Focused()
}
