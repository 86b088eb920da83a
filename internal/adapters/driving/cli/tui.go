package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bootman/internal/adapters/driving/tui"
	"github.com/custodia-labs/bootman/internal/logger"
)

// DocumentWatcher reports edits to the deployment document until closed.
type DocumentWatcher interface {
	tui.DocumentWatcher
	Close() error
}

// TUIConfig holds configuration for the dashboard.
type TUIConfig struct {
	// Watch starts watching the document at path. Optional.
	Watch func(path string) (DocumentWatcher, error)

	// Handoff releases the terminal before an update starts its replacement.
	Handoff tui.Handoff

	// CheckOnStartup looks for a new release as soon as the dashboard opens.
	CheckOnStartup bool

	// StopOnExit stops a running deployment when the dashboard quits.
	StopOnExit bool
}

// tuiConfig holds the current TUI configuration.
var tuiConfig *TUIConfig

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive dashboard.

The dashboard shows the deployment settings as an editable form, streams
container output, and offers new releases as they are found.

Controls:
  ↑/k, ↓/j - Move between settings
  Enter    - Edit / Commit the selected setting
  Esc      - Cancel editing / Back
  ctrl+s   - Save settings
  ctrl+r   - Restore defaults
  t        - Start / Stop the deployment
  o        - Open the frontend
  u        - Check for updates
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Configuration: configService,
		Deployment:    deploymentService,
		Update:        updateService,
	}
	if urlOpener != nil {
		ports.Opener = urlOpener
	}

	if tuiConfig != nil {
		ports.Handoff = tuiConfig.Handoff
		ports.CheckOnStartup = tuiConfig.CheckOnStartup
		ports.StopOnExit = tuiConfig.StopOnExit

		if tuiConfig.Watch != nil && configService != nil {
			w, err := tuiConfig.Watch(configService.DocumentPath())
			if err != nil {
				// The dashboard still works without live reload.
				logger.Warn("not watching %s: %v", configService.DocumentPath(), err)
			} else {
				defer w.Close()
				ports.Watcher = w
			}
		}
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
