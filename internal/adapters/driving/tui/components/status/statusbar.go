// Package status provides the dashboard status bar.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bootman/internal/core/domain"
)

// Mode selects which keybinding hints are shown.
type Mode string

const (
	ModeNavigate Mode = "navigate"
	ModeEdit     Mode = "edit"
	ModePrompt   Mode = "prompt"
)

// Bar displays deployment status, the latest notice and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	mode       Mode
	deployment domain.DeploymentStatus
	busy       string
	message    string
	isError    bool
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		mode:   ModeNavigate,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var indicator string
	switch s.deployment {
	case domain.DeploymentRunning:
		indicator = s.styles.Success.Render("● running")
	case domain.DeploymentStopped:
		indicator = s.styles.Muted.Render("○ stopped")
	default:
		indicator = s.styles.Muted.Render("? unknown")
	}

	switch {
	case s.busy != "":
		return indicator + "  " + s.styles.Warning.Render(s.busy)
	case s.isError:
		return indicator + "  " + s.styles.Error.Render("Error: "+s.message)
	case s.message != "":
		return indicator + "  " + s.styles.Normal.Render(s.message)
	}
	return indicator
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.mode {
	case ModeEdit:
		bindings = s.keymap.EditHelp()
	case ModePrompt:
		bindings = s.keymap.PromptHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetMode selects the hint set.
func (s *Bar) SetMode(mode Mode) {
	s.mode = mode
}

// Mode returns the current hint set.
func (s *Bar) Mode() Mode {
	return s.mode
}

// SetDeployment sets the deployment indicator.
func (s *Bar) SetDeployment(status domain.DeploymentStatus) {
	s.deployment = status
}

// Deployment returns the deployment indicator state.
func (s *Bar) Deployment() domain.DeploymentStatus {
	return s.deployment
}

// SetBusy shows an in-progress label until ClearBusy.
func (s *Bar) SetBusy(label string) {
	s.busy = label
}

// ClearBusy removes the in-progress label.
func (s *Bar) ClearBusy() {
	s.busy = ""
}

// Busy returns the in-progress label.
func (s *Bar) Busy() string {
	return s.busy
}

// SetMessage shows an informational notice.
func (s *Bar) SetMessage(message string) {
	s.message = message
	s.isError = false
}

// SetError shows a failure notice.
func (s *Bar) SetError(err error) {
	if err == nil {
		s.message = ""
		s.isError = false
		return
	}
	s.message = err.Error()
	s.isError = true
}

// Message returns the current notice.
func (s *Bar) Message() string {
	return s.message
}

// IsError reports whether the notice is a failure.
func (s *Bar) IsError() bool {
	return s.isError
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the notice and the busy label.
func (s *Bar) Clear() {
	s.busy = ""
	s.message = ""
	s.isError = false
}
