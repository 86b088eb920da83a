// Package cli provides the bootman command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bootman/internal/core/ports/driving"
	"github.com/custodia-labs/bootman/internal/logger"
)

// version is set at build time through SetVersion.
var version = "dev"

// Options holds the global flags.
type Options struct {
	// Verbose enables debug logging.
	Verbose bool

	// ConfigDir overrides the preferences directory (default ~/.bootman).
	ConfigDir string

	// DocumentPath overrides the deployment document location.
	DocumentPath string
}

// URLOpener opens a URL in the user's browser.
type URLOpener interface {
	Open(url string) error
}

// Services holds everything the commands drive.
type Services struct {
	Configuration driving.ConfigurationService
	Settings      driving.SettingsService
	Update        driving.UpdateService
	Deployment    driving.DeploymentService
	Opener        URLOpener
	TUI           *TUIConfig
}

// Bootstrap builds the services once flags are parsed. The returned function
// releases what the services hold open.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	opts      Options
	bootstrap Bootstrap
	cleanup   func()

	configService     driving.ConfigurationService
	settingsService   driving.SettingsService
	updateService     driving.UpdateService
	deploymentService driving.DeploymentService
	urlOpener         URLOpener
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "bootman/skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "bootman",
	Short: "Configure, run and update the DPT deployment",
	Long: `bootman manages a local DPT deployment.

It edits the deployment settings stored in the compose document, starts and
stops the containers, and keeps itself up to date from the published releases.

Run without a command to open the interactive dashboard.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	RunE:              runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print debug output")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "preferences directory (default ~/.bootman)")
	flags.StringVar(&opts.DocumentPath, "document", "", "deployment compose document")
}

// SetVersion sets the version reported by the version command and used for
// update checks.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Version returns the running version.
func Version() string {
	return version
}

// SetBootstrap registers the function building the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	configService = s.Configuration
	settingsService = s.Settings
	updateService = s.Update
	deploymentService = s.Deployment
	urlOpener = s.Opener
	tuiConfig = s.TUI
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] != "" {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}
