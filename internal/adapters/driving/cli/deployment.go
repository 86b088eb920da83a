package cli

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the deployment",
	Long: `Start the deployment containers.

The container runtime is started first when it is not reachable. Compose
output is streamed as it arrives.`,
	RunE: runUp,
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the deployment",
	RunE:  runDown,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the deployment is running",
	RunE:  runStatus,
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the frontend in the browser",
	RunE:  runOpen,
}

func init() {
	upCmd.Flags().Bool("open", false, "open the frontend once the deployment is up")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(openCmd)
}

func runUp(cmd *cobra.Command, _ []string) error {
	if deploymentService == nil || configService == nil {
		return errors.New("deployment service not configured")
	}
	p := newPrinter(cmd.OutOrStdout())

	if err := deploymentService.Start(cmd.Context(), outputSink(cmd.OutOrStdout(), p)); err != nil {
		return fmt.Errorf("starting deployment: %w", err)
	}
	p.Success("Deployment running at %s", configService.FrontendURL())

	if open, _ := cmd.Flags().GetBool("open"); open {
		return openFrontend(p)
	}
	return nil
}

func runDown(cmd *cobra.Command, _ []string) error {
	if deploymentService == nil {
		return errors.New("deployment service not configured")
	}
	p := newPrinter(cmd.OutOrStdout())

	if err := deploymentService.Stop(cmd.Context(), outputSink(cmd.OutOrStdout(), p)); err != nil {
		return fmt.Errorf("stopping deployment: %w", err)
	}
	p.Success("Deployment stopped")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if deploymentService == nil || configService == nil {
		return errors.New("deployment service not configured")
	}

	state := domain.DeploymentStopped.String()
	running, err := deploymentService.IsRunning(cmd.Context())
	switch {
	case err != nil:
		state = fmt.Sprintf("%s (%v)", domain.DeploymentUnknown, err)
	case running:
		state = domain.DeploymentRunning.String()
	}

	cmd.Printf("Deployment: %s\n", state)
	cmd.Printf("Frontend:   %s\n", configService.FrontendURL())
	cmd.Printf("Document:   %s\n", configService.DocumentPath())
	cmd.Printf("Version:    %s\n", version)
	return nil
}

func runOpen(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("configuration service not configured")
	}
	return openFrontend(newPrinter(cmd.OutOrStdout()))
}

func openFrontend(p *printer) error {
	if urlOpener == nil {
		return errors.New("browser opener not configured")
	}
	url := configService.FrontendURL()
	if err := urlOpener.Open(url); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	p.Step("Opened %s", url)
	return nil
}

// outputSink prints command output lines. Lines arrive from the stdout and
// stderr readers concurrently.
func outputSink(w io.Writer, p *printer) domain.OutputSink {
	var mu sync.Mutex
	return func(line domain.OutputLine) {
		mu.Lock()
		defer mu.Unlock()
		if line.Stream == domain.StreamSystem {
			p.Step("%s", line.Text)
			return
		}
		fmt.Fprintln(w, line.Text)
	}
}
