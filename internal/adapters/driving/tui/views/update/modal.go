// Package update provides the self-update prompt and progress modal.
package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bootman/internal/core/domain"
)

// Decision is the user's answer to the update prompt.
type Decision int

// Decisions.
const (
	DecisionNone Decision = iota
	DecisionInstall
	DecisionDecline
	DecisionClose
)

// Modal shows the update offer, download progress and the outcome.
type Modal struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	bar     progress.Model
	session domain.UpdateSession
	width   int
}

// NewModal creates the modal.
func NewModal(s *styles.Styles, km *keymap.KeyMap) *Modal {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40
	return &Modal{styles: s, keymap: km, bar: bar}
}

// SetSession replaces the displayed session snapshot.
func (m *Modal) SetSession(session domain.UpdateSession) {
	m.session = session
}

// Session returns the displayed session snapshot.
func (m *Modal) Session() domain.UpdateSession {
	return m.session
}

// SetWidth sets the available screen width.
func (m *Modal) SetWidth(width int) {
	m.width = width
	if w := width - 16; w > 10 && w < 60 {
		m.bar.Width = w
	}
}

// Update maps a key press to a decision. While a download is running every
// key is ignored.
func (m *Modal) Update(msg tea.Msg) Decision {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return DecisionNone
	}
	k := keyMsg.String()

	switch m.session.State {
	case domain.UpdateAwaitingConfirmation:
		switch {
		case keymap.Matches(k, m.keymap.Confirm):
			return DecisionInstall
		case keymap.Matches(k, m.keymap.Decline):
			return DecisionDecline
		}
	case domain.UpdateDownloading, domain.UpdateSwapping, domain.UpdateRestarted:
		return DecisionNone
	default:
		if keymap.Matches(k, m.keymap.Back) || keymap.Matches(k, m.keymap.Edit) {
			return DecisionClose
		}
	}
	return DecisionNone
}

// View renders the modal box.
func (m *Modal) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Boot manager update"))
	b.WriteString("\n\n")
	b.WriteString(m.body())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render(m.hint()))
	return m.styles.Modal.Render(b.String())
}

// Place centers the modal on a screen of the given size.
func (m *Modal) Place(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.View())
}

func (m *Modal) body() string {
	s := m.session
	switch s.State {
	case domain.UpdateAvailable, domain.UpdateAwaitingConfirmation:
		return fmt.Sprintf("Version %s is available (running %s).\nDownload and restart now?",
			s.LatestTag(), s.CurrentVersion)
	case domain.UpdateDownloading:
		return m.progressView()
	case domain.UpdateSwapping:
		return "Download complete. Starting the new version..."
	case domain.UpdateRestarted:
		return m.styles.Success.Render("Handing over to " + s.LatestTag() + ".")
	case domain.UpdateFailed:
		msg := "Update failed."
		if s.Err != nil {
			msg = "Update failed: " + s.Err.Error()
		}
		return m.styles.Error.Render(msg)
	case domain.UpdateNone:
		if s.CheckFailed() {
			return m.styles.Warning.Render("Could not check for updates: " + s.Err.Error())
		}
		return m.styles.Success.Render("You are running the latest version (" + s.CurrentVersion + ").")
	case domain.UpdateChecking:
		return "Checking for updates..."
	default:
		return ""
	}
}

func (m *Modal) progressView() string {
	p := m.session.Progress
	if p.Asset == "" {
		return "Preparing download..."
	}

	label := m.styles.Normal.Render("Downloading " + p.Asset)
	frac := p.Fraction()
	if frac < 0 {
		return label + "\n" + m.styles.Muted.Render(formatBytes(p.Done)+" received")
	}
	return fmt.Sprintf("%s\n%s %3.0f%%", label, m.bar.ViewAs(frac), frac*100)
}

func (m *Modal) hint() string {
	switch m.session.State {
	case domain.UpdateAwaitingConfirmation:
		return "y install • n not now"
	case domain.UpdateDownloading, domain.UpdateSwapping, domain.UpdateRestarted:
		return "please wait"
	default:
		return "esc close"
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
