package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const tokenKey = "release.token"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage bootman preferences",
	Long: `View and change bootman's own preferences: where releases come from,
how the container runtime is started, and dashboard behaviour.

Preferences are stored in config.toml inside the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a preference",
	Long: `Set a preference by key.

List values (runtime.compose_command, runtime.start_command) are given as a
single space separated string. Omit the value of release.token to enter it
without echo.

Examples:
  bootman settings set runtime.retry_attempts 60
  bootman settings set runtime.compose_command "docker compose"
  bootman settings set release.token`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore a preference's default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsReset,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List preference keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Document]")
	if settings.Document.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Document.Path)
	} else {
		cmd.Printf("  Path: (next to the executable)\n")
	}
	if configService != nil {
		cmd.Printf("  In use: %s\n", configService.DocumentPath())
	}
	cmd.Println()

	cmd.Println("[Release]")
	cmd.Printf("  Source: %s\n", settings.Release.Source())
	if settings.Release.Token != "" {
		cmd.Printf("  Token: %s\n", maskAPIKey(settings.Release.Token))
	} else {
		cmd.Printf("  Token: (not set)\n")
	}
	cmd.Printf("  Executable: %s*%s\n", settings.Release.ExecutableName, settings.Release.ExecutableSuffix)
	cmd.Println()

	cmd.Println("[Update]")
	cmd.Printf("  Check on startup: %s\n", yesNo(settings.Update.CheckOnStartup))
	cmd.Printf("  Download timeout: %s\n", settings.Update.DownloadTimeout)
	cmd.Println()

	cmd.Println("[Runtime]")
	cmd.Printf("  Compose command: %s\n", strings.Join(settings.Runtime.ComposeCommand, " "))
	cmd.Printf("  Project: %s\n", settings.Runtime.Project)
	cmd.Printf("  Start command: %s\n", strings.Join(settings.Runtime.StartCommand, " "))
	cmd.Printf("  Wait for runtime: %d × %s\n", settings.Runtime.RetryAttempts, settings.Runtime.RetryInterval)
	cmd.Printf("  Stop on exit: %s\n", yesNo(settings.Runtime.StopOnExit))

	if err := settings.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case key == tokenKey:
		cmd.Print("GitHub token: ")
		value = readPassword()
		cmd.Println()
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	if err := settingsService.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if key == tokenKey {
		shown = maskAPIKey(value)
	}
	newPrinter(cmd.OutOrStdout()).Success("%s = %s", key, shown)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Reset(args[0]); err != nil {
		return fmt.Errorf("failed to reset %s: %w", args[0], err)
	}
	newPrinter(cmd.OutOrStdout()).Success("%s restored to its default", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
