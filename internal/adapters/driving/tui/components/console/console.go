// Package console provides the scrolling output pane of the dashboard.
package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bootman/internal/core/domain"
)

// DefaultMaxLines caps the lines kept in the pane.
const DefaultMaxLines = 1000

// Pane shows command output and log lines, following the tail unless the
// user scrolled up.
type Pane struct {
	viewport viewport.Model
	styles   *styles.Styles
	lines    []domain.OutputLine
	maxLines int
}

// New creates a console pane of the given size.
func New(s *styles.Styles, width, height int) *Pane {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Pane{
		viewport: viewport.New(width, height),
		styles:   s,
		maxLines: DefaultMaxLines,
	}
}

// Append adds a line and keeps the view at the bottom if it was there.
func (p *Pane) Append(line domain.OutputLine) {
	follow := p.viewport.AtBottom()

	p.lines = append(p.lines, line)
	if over := len(p.lines) - p.maxLines; over > 0 {
		p.lines = append(p.lines[:0], p.lines[over:]...)
	}

	p.viewport.SetContent(p.render())
	if follow {
		p.viewport.GotoBottom()
	}
}

// Update forwards scroll keys and mouse events to the viewport.
func (p *Pane) Update(msg tea.Msg) (*Pane, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the pane with its border.
func (p *Pane) View() string {
	return p.styles.Console.Render(p.viewport.View())
}

// SetSize resizes the pane, excluding the border.
func (p *Pane) SetSize(width, height int) {
	if width < 10 {
		width = 10
	}
	if height < 1 {
		height = 1
	}
	p.viewport.Width = width
	p.viewport.Height = height
	p.viewport.SetContent(p.render())
	p.viewport.GotoBottom()
}

// Lines returns the retained lines.
func (p *Pane) Lines() []domain.OutputLine {
	return p.lines
}

// Clear empties the pane.
func (p *Pane) Clear() {
	p.lines = nil
	p.viewport.SetContent("")
}

func (p *Pane) render() string {
	var b strings.Builder
	for i, l := range p.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch l.Stream {
		case domain.StreamSystem:
			b.WriteString(p.styles.System.Render(l.Text))
		case domain.StreamStderr:
			b.WriteString(p.styles.Muted.Render(l.Text))
		default:
			b.WriteString(p.styles.Normal.Render(l.Text))
		}
	}
	return b.String()
}
