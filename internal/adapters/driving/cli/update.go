package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for and install new bootman releases",
	RunE:  runUpdateCheck,
}

var updateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a newer release is published",
	RunE:  runUpdateCheck,
}

var updateInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Download and start the latest release",
	Long: `Download the latest release and start it in place of this one.

The new executable and its compose document are saved next to the current
executable; the current executable is kept. Unless --yes is given, the
update is confirmed interactively.`,
	RunE: runUpdateInstall,
}

// confirmUpdate asks whether to install the offered release.
var confirmUpdate = func(session domain.UpdateSession) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Install bootman %s?", session.LatestTag())).
		Description(fmt.Sprintf("You are running %s. The new version is downloaded and started in its place.",
			session.CurrentVersion)).
		Affirmative("Install").
		Negative("Not now").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// isInteractive reports whether a confirmation prompt can be shown.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func init() {
	updateInstallCmd.Flags().BoolP("yes", "y", false, "install without asking")

	updateCmd.AddCommand(updateCheckCmd)
	updateCmd.AddCommand(updateInstallCmd)
	rootCmd.AddCommand(updateCmd)
}

func runUpdateCheck(cmd *cobra.Command, _ []string) error {
	if updateService == nil {
		return errors.New("update service not configured")
	}

	session, err := updateService.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	if reportCheck(cmd, session) {
		cmd.Println("Run 'bootman update install' to install it.")
	}
	return nil
}

func runUpdateInstall(cmd *cobra.Command, _ []string) error {
	if updateService == nil {
		return errors.New("update service not configured")
	}

	session, err := updateService.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}
	if !reportCheck(cmd, session) {
		return nil
	}

	offered, err := updateService.Offer()
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !isInteractive() {
			_ = updateService.Decline()
			return errors.New("not a terminal: pass --yes to install without confirmation")
		}
		ok, err := confirmUpdate(offered)
		if err != nil {
			_ = updateService.Decline()
			return err
		}
		if !ok {
			if err := updateService.Decline(); err != nil {
				return err
			}
			cmd.Println("Update declined.")
			return nil
		}
	}

	reporter := newProgressReporter(cmd.OutOrStdout())
	unsubscribe := updateService.Subscribe(reporter.observe)
	defer unsubscribe()

	if _, err := updateService.Install(cmd.Context()); err != nil {
		newPrinter(cmd.OutOrStdout()).Failure("Update failed", "The running version was left unchanged.")
		return fmt.Errorf("installing update: %w", err)
	}
	return nil
}

// reportCheck prints the check outcome and reports whether an update is available.
func reportCheck(cmd *cobra.Command, session domain.UpdateSession) bool {
	p := newPrinter(cmd.OutOrStdout())
	switch {
	case session.CheckFailed():
		p.Warning("Could not check for updates: %v", session.Err)
		return false
	case session.State == domain.UpdateAvailable:
		p.Step("Update available: %s → %s", session.CurrentVersion, session.LatestTag())
		return true
	default:
		p.Success("bootman %s is up to date", session.CurrentVersion)
		return false
	}
}

// progressReporter prints state changes and download progress in 10% steps.
type progressReporter struct {
	mu     sync.Mutex
	w      io.Writer
	p      *printer
	state  domain.UpdateState
	asset  string
	bucket int
}

func newProgressReporter(w io.Writer) *progressReporter {
	return &progressReporter{w: w, p: newPrinter(w), bucket: -1}
}

func (r *progressReporter) observe(s domain.UpdateSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.State != r.state {
		r.state = s.State
		switch s.State {
		case domain.UpdateDownloading:
			r.p.Step("Downloading %s", s.LatestTag())
		case domain.UpdateSwapping:
			r.p.Step("Starting %s", s.Plan.ExecutablePath)
		case domain.UpdateRestarted:
			r.p.Success("Handed over to %s", s.LatestTag())
		default:
		}
	}

	if s.State != domain.UpdateDownloading || s.Progress.Asset == "" {
		return
	}
	if s.Progress.Asset != r.asset {
		r.asset = s.Progress.Asset
		r.bucket = -1
		fmt.Fprintf(r.w, "  %s\n", r.asset)
	}
	frac := s.Progress.Fraction()
	if frac < 0 {
		return
	}
	if b := int(frac * 10); b > r.bucket {
		r.bucket = b
		fmt.Fprintf(r.w, "    %3d%%\n", b*10)
	}
}
