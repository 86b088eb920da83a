package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit the deployment settings",
	Long: `View and edit the settings stored in the deployment compose document.

Dependent values such as the frontend URL and the database connection
strings are re-derived whenever a setting changes.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every setting",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key=value]...",
	Short: "Change one or more settings",
	Long: `Change one or more settings and save the document.

Examples:
  bootman config set web.port=8080
  bootman config set admin.username=ops admin.password=s3cret`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting's default",
	RunE:  runConfigReset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the document location",
	RunE:  runConfigPath,
}

var configFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the setting keys",
	RunE:  runConfigFields,
}

func init() {
	configShowCmd.Flags().Bool("reveal", false, "show secret values")
	configCmd.Flags().Bool("reveal", false, "show secret values")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configFieldsCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("configuration service not configured")
	}
	reveal, _ := cmd.Flags().GetBool("reveal")

	values, err := configService.Read()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	cmd.Printf("Document: %s\n", configService.DocumentPath())
	cmd.Printf("Frontend: %s\n", configService.FrontendURL())

	group := ""
	for _, v := range values {
		if v.Field.Group != group {
			group = v.Field.Group
			cmd.Printf("\n[%s]\n", group)
		}
		value := v.Masked()
		if reveal {
			value = v.Value
		}
		cmd.Printf("  %-22s %-18s %s\n", v.Field.Label, "("+v.Field.Key+")", value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configService == nil {
		return errors.New("configuration service not configured")
	}

	value, err := configService.Get(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configService == nil {
		return errors.New("configuration service not configured")
	}

	values, err := parseAssignments(args)
	if err != nil {
		return err
	}
	if err := configService.Set(values); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	p := newPrinter(cmd.OutOrStdout())
	p.Success("Saved %d setting(s) to %s", len(values), configService.DocumentPath())
	p.Info("Frontend: %s", configService.FrontendURL())
	return nil
}

func runConfigReset(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("configuration service not configured")
	}

	if err := configService.Reset(); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	newPrinter(cmd.OutOrStdout()).Success("Restored default settings")
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("configuration service not configured")
	}
	cmd.Println(configService.DocumentPath())
	return nil
}

func runConfigFields(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("configuration service not configured")
	}

	for _, f := range configService.Schema().Fields {
		def := f.Default
		if f.Secret {
			def = domain.FieldValue{Field: f, Value: f.Default}.Masked()
		}
		cmd.Printf("%-18s %-18s %-24s default %s\n", f.Key, f.Group, f.Label, def)
	}
	return nil
}

// parseAssignments turns key=value arguments into a map. Later assignments
// of the same key win.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q is not key=value", domain.ErrInvalidInput, arg)
		}
		values[key] = value
	}
	return values, nil
}
