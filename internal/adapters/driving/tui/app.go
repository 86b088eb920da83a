package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/components/console"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/views/form"
	"github.com/custodia-labs/bootman/internal/adapters/driving/tui/views/update"
	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/logger"
)

// busSize bounds the number of background events buffered between renders.
const busSize = 256

// App is the dashboard following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	form    *form.View
	console *console.Pane
	status  *status.Bar
	modal   *update.Modal
	help    help.Model

	// bus carries output lines, update progress and log lines into Update.
	bus *eventBus

	// currentView tracks which view is active.
	currentView messages.ViewType

	// frontendURL is the last URL read off the document by a command.
	frontendURL string

	// pending holds values loaded while a field was being edited.
	pending []domain.FieldValue

	// quitting is set while the deployment is stopped before exit.
	quitting bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new dashboard with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		form:        form.NewView(s, km),
		console:     console.New(s, 80, 10),
		status:      status.NewBar(s, km),
		modal:       update.NewModal(s, km),
		help:        help.New(),
		bus:         newEventBus(busSize),
		currentView: messages.ViewDashboard,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("bootman - DPT boot manager"),
		a.bus.wait(),
		a.loadFields(),
		a.checkDeployment(),
	}
	if a.ports.Update != nil && a.ports.CheckOnStartup {
		cmds = append(cmds, a.checkUpdate(false))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case busMsg:
		model, cmd := a.Update(msg.msg)
		return model, tea.Batch(cmd, a.bus.wait())

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.FieldsLoaded:
		if msg.Err != nil {
			a.setError(fmt.Errorf("reading document: %w", msg.Err))
			return a, nil
		}
		a.frontendURL = msg.FrontendURL
		if a.form.Editing() {
			a.pending = msg.Values
			return a, nil
		}
		a.form.SetValues(msg.Values)
		a.layout()
		return a, nil

	case messages.FieldsSaved:
		if msg.Err != nil {
			a.setError(fmt.Errorf("saving: %w", msg.Err))
			return a, nil
		}
		a.status.SetMessage("Saved to " + a.ports.Configuration.DocumentPath())
		return a, a.loadFields()

	case messages.FieldsReset:
		if msg.Err != nil {
			a.setError(fmt.Errorf("resetting: %w", msg.Err))
			return a, nil
		}
		a.status.SetMessage("Defaults restored")
		return a, a.loadFields()

	case messages.DocumentChanged:
		logger.Debug("document changed on disk, reloading")
		return a, a.loadFields()

	case messages.DeploymentChecked:
		if msg.Err != nil {
			a.status.SetDeployment(domain.DeploymentUnknown)
			a.setError(msg.Err)
			return a, nil
		}
		if msg.Running {
			a.status.SetDeployment(domain.DeploymentRunning)
		} else {
			a.status.SetDeployment(domain.DeploymentStopped)
		}
		return a, nil

	case messages.DeploymentFinished:
		return a.deploymentFinished(msg)

	case messages.OutputReceived:
		a.console.Append(msg.Line)
		return a, nil

	case messages.UpdateChecked:
		return a.updateChecked(msg)

	case messages.UpdateProgressed:
		if a.currentView == messages.ViewUpdate {
			a.modal.SetSession(msg.Session)
		}
		return a, nil

	case messages.UpdateFinished:
		a.modal.SetSession(msg.Session)
		a.status.SetMode(status.ModeNavigate)
		if msg.Err != nil {
			a.setError(fmt.Errorf("update: %w", msg.Err))
		}
		return a, nil

	case messages.BrowserOpened:
		if msg.Err != nil {
			a.setError(fmt.Errorf("opening %s: %w", msg.URL, msg.Err))
			return a, nil
		}
		a.status.SetMessage("Opened " + msg.URL)
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a.quit()
	}

	var cmd tea.Cmd
	a.console, cmd = a.console.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewUpdate:
		return a.handleModalKey(msg)
	case messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
			a.currentView = messages.ViewDashboard
		}
		return a, nil
	case messages.ViewDashboard:
	}

	var (
		cmd     tea.Cmd
		handled bool
	)
	a.form, cmd, handled = a.form.Update(msg)
	if a.form.Editing() {
		a.status.SetMode(status.ModeEdit)
	} else {
		a.status.SetMode(status.ModeNavigate)
		if a.pending != nil {
			a.form.SetValues(a.pending)
			a.pending = nil
		}
	}
	if handled {
		return a, cmd
	}

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a.quit()
	case keymap.Matches(k, a.keymap.Help):
		a.currentView = messages.ViewHelp
		return a, nil
	case keymap.Matches(k, a.keymap.Save):
		return a, a.saveFields()
	case keymap.Matches(k, a.keymap.Reset):
		return a, a.resetFields()
	case keymap.Matches(k, a.keymap.Toggle):
		return a.toggleDeployment()
	case keymap.Matches(k, a.keymap.Update):
		if a.ports.Update == nil {
			a.setError(ErrUpdatesDisabled)
			return a, nil
		}
		a.status.SetBusy("checking for updates")
		return a, a.checkUpdate(true)
	case keymap.Matches(k, a.keymap.Open):
		return a, a.openBrowser()
	}

	a.console, cmd = a.console.Update(msg)
	return a, cmd
}

func (a *App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal.Update(msg) {
	case update.DecisionInstall:
		a.modal.SetSession(withState(a.modal.Session(), domain.UpdateDownloading))
		return a, a.installUpdate()
	case update.DecisionDecline:
		if err := a.ports.Update.Decline(); err != nil {
			a.setError(err)
		}
		a.closeModal()
	case update.DecisionClose:
		a.closeModal()
	case update.DecisionNone:
	}
	return a, nil
}

func (a *App) updateChecked(msg messages.UpdateChecked) (tea.Model, tea.Cmd) {
	a.status.ClearBusy()
	if msg.Err != nil {
		if msg.Manual || !errors.Is(msg.Err, domain.ErrUpdateInProgress) {
			a.setError(fmt.Errorf("update check: %w", msg.Err))
		}
		return a, nil
	}

	switch msg.Session.State {
	case domain.UpdateAvailable:
		offered, err := a.ports.Update.Offer()
		if err != nil {
			a.setError(err)
			return a, nil
		}
		a.modal.SetSession(offered)
		a.status.SetMode(status.ModePrompt)
		a.currentView = messages.ViewUpdate
	case domain.UpdateNone:
		if msg.Manual {
			a.modal.SetSession(msg.Session)
			a.currentView = messages.ViewUpdate
		}
	default:
	}
	return a, nil
}

func (a *App) deploymentFinished(msg messages.DeploymentFinished) (tea.Model, tea.Cmd) {
	a.status.ClearBusy()
	a.status.SetDeployment(a.ports.Deployment.Status())

	if msg.Err != nil {
		a.setError(fmt.Errorf("%s: %w", msg.Action, msg.Err))
	} else if msg.Action == messages.ActionStart {
		if msg.FrontendURL != "" {
			a.frontendURL = msg.FrontendURL
		}
		a.status.SetMessage("Deployment running at " + a.frontendURL)
	} else {
		a.status.SetMessage("Deployment stopped")
	}

	if a.quitting {
		return a, tea.Quit
	}
	if msg.Action == messages.ActionStart {
		return a, a.loadFields()
	}
	return a, nil
}

func (a *App) toggleDeployment() (tea.Model, tea.Cmd) {
	if a.ports.Deployment.Busy() || a.status.Busy() != "" {
		a.status.SetMessage("Please wait for the current operation to finish")
		return a, nil
	}

	if a.status.Deployment() == domain.DeploymentRunning {
		a.status.SetBusy("stopping deployment")
		return a, a.runDeployment(messages.ActionStop)
	}

	a.status.SetBusy("starting deployment")
	a.console.Clear()
	return a, a.startDeployment(a.form.Values())
}

// quit stops a running deployment first when configured to.
func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.quitting {
		return a, nil
	}
	if a.ports.Deployment.Busy() {
		a.status.SetMessage("Please wait for the current operation to finish, or press ctrl+c")
		return a, nil
	}
	if a.ports.StopOnExit && a.status.Deployment() == domain.DeploymentRunning {
		a.quitting = true
		a.status.SetBusy("stopping deployment before exit")
		return a, a.runDeployment(messages.ActionStop)
	}
	return a, tea.Quit
}

func (a *App) closeModal() {
	a.currentView = messages.ViewDashboard
	a.status.SetMode(status.ModeNavigate)
}

func (a *App) setError(err error) {
	a.err = err
	a.status.SetError(err)
	logger.Debug("dashboard error: %v", err)
}

// layout distributes the terminal height between the form and the console.
func (a *App) layout() {
	if !a.ready {
		return
	}
	a.status.SetWidth(a.width)
	a.modal.SetWidth(a.width)
	a.help.Width = a.width

	const chrome = 2 + 1 + 2 // header, status bar, console border
	a.form.SetDimensions(a.width, a.height)
	a.console.SetSize(a.width-4, a.height-a.form.Height()-chrome)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewUpdate:
		return a.modal.Place(a.width, a.height)
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.viewDashboard()
	}
}

func (a *App) viewDashboard() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		a.header(),
		a.form.View(),
		a.console.View(),
		a.status.View(),
	)
}

func (a *App) header() string {
	title := a.styles.Title.Render("DPT boot manager")
	var info string
	if a.ports.Update != nil {
		info = a.ports.Update.CurrentVersion() + "  "
	}
	info += a.frontendURL
	return title + "  " + a.styles.Muted.Render(info) + "\n"
}

func (a *App) viewHelp() string {
	a.help.ShowAll = true
	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Keybindings"),
		"",
		a.help.View(a.keymap),
		"",
		a.styles.Help.Render("esc back"),
	)
}

// Run starts the dashboard and blocks until it exits.
func (a *App) Run() error {
	detach := a.attach()
	defer detach()

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if a.ports.Handoff != nil {
		a.ports.Handoff.SetBeforeLaunch(func() func() {
			_ = p.ReleaseTerminal()
			return func() { _ = p.RestoreTerminal() }
		})
		defer a.ports.Handoff.SetBeforeLaunch(nil)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// attach connects background producers to the event bus and returns the
// function disconnecting them.
func (a *App) attach() func() {
	logger.SetHook(func(level logger.Level, msg string) {
		a.bus.trySend(messages.OutputReceived{Line: domain.OutputLine{
			Stream: domain.StreamSystem,
			Text:   fmt.Sprintf("[%s] %s", level, msg),
		}})
	})

	var unsubscribe func()
	if a.ports.Update != nil {
		unsubscribe = a.ports.Update.Subscribe(func(s domain.UpdateSession) {
			a.bus.send(messages.UpdateProgressed{Session: s})
		})
	}
	if a.ports.Watcher != nil {
		go a.watch(a.ports.Watcher)
	}

	return func() {
		logger.SetHook(nil)
		if unsubscribe != nil {
			unsubscribe()
		}
		a.bus.close()
	}
}

func (a *App) watch(w DocumentWatcher) {
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
			a.bus.send(messages.DocumentChanged{})
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			a.bus.send(messages.ErrorOccurred{Err: fmt.Errorf("watching document: %w", err)})
		case <-a.bus.done:
			return
		}
	}
}

// sink forwards deployment output into the console pane.
func (a *App) sink(line domain.OutputLine) {
	a.bus.send(messages.OutputReceived{Line: line})
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.layout()
}

func withState(s domain.UpdateSession, state domain.UpdateState) domain.UpdateSession {
	s.State = state
	return s
}
