package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/messages"
)

// Commands run service calls off the program loop and report back as messages.

func (a *App) loadFields() tea.Cmd {
	return func() tea.Msg {
		values, err := a.ports.Configuration.Read()
		if err != nil {
			return messages.FieldsLoaded{Err: err}
		}
		return messages.FieldsLoaded{Values: values, FrontendURL: a.ports.Configuration.FrontendURL()}
	}
}

func (a *App) saveFields() tea.Cmd {
	values := a.form.Values()
	return func() tea.Msg {
		return messages.FieldsSaved{Err: a.ports.Configuration.Apply(values)}
	}
}

func (a *App) resetFields() tea.Cmd {
	return func() tea.Msg {
		return messages.FieldsReset{Err: a.ports.Configuration.Reset()}
	}
}

func (a *App) checkDeployment() tea.Cmd {
	return func() tea.Msg {
		running, err := a.ports.Deployment.IsRunning(a.ctx)
		return messages.DeploymentChecked{Running: running, Err: err}
	}
}

// startDeployment writes the form to the document before bringing the
// deployment up, so the containers see what the user sees.
func (a *App) startDeployment(values map[string]string) tea.Cmd {
	return func() tea.Msg {
		if len(values) > 0 {
			if err := a.ports.Configuration.Apply(values); err != nil {
				return messages.DeploymentFinished{
					Action: messages.ActionStart,
					Err:    fmt.Errorf("saving settings: %w", err),
				}
			}
		}
		return a.started(a.ports.Deployment.Start(a.ctx, a.sink))
	}
}

// started reports a finished start. It runs inside a command.
func (a *App) started(err error) messages.DeploymentFinished {
	msg := messages.DeploymentFinished{Action: messages.ActionStart, Err: err}
	if err == nil {
		msg.FrontendURL = a.ports.Configuration.FrontendURL()
	}
	return msg
}

func (a *App) runDeployment(action messages.DeploymentAction) tea.Cmd {
	return func() tea.Msg {
		if action == messages.ActionStop {
			return messages.DeploymentFinished{Action: action, Err: a.ports.Deployment.Stop(a.ctx, a.sink)}
		}
		return a.started(a.ports.Deployment.Start(a.ctx, a.sink))
	}
}

func (a *App) checkUpdate(manual bool) tea.Cmd {
	return func() tea.Msg {
		session, err := a.ports.Update.Check(a.ctx)
		return messages.UpdateChecked{Session: session, Manual: manual, Err: err}
	}
}

// installUpdate only returns on failure; on success the process is replaced.
func (a *App) installUpdate() tea.Cmd {
	return func() tea.Msg {
		session, err := a.ports.Update.Install(a.ctx)
		return messages.UpdateFinished{Session: session, Err: err}
	}
}

func (a *App) openBrowser() tea.Cmd {
	url := a.frontendURL
	return func() tea.Msg {
		if url == "" {
			return messages.BrowserOpened{Err: ErrFrontendUnknown}
		}
		if a.ports.Opener == nil {
			return messages.BrowserOpened{URL: url, Err: ErrBrowserUnavailable}
		}
		return messages.BrowserOpened{URL: url, Err: a.ports.Opener.Open(url)}
	}
}
