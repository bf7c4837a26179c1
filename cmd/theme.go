package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/folio/internal/theme"
)

var themeMode theme.Mode

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the stored light/dark preference",
	Long: `Show or change the theme preference the portfolio page renders with.

Examples:
  folio theme              # Print the stored mode
  folio theme toggle       # Flip between light and dark
  folio theme set dark     # Store a mode
  folio theme set --mode light
  folio theme watch        # Print the mode whenever the file changes`,
	RunE: runThemeShow,
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip the stored mode",
	Args:  cobra.NoArgs,
	RunE:  runThemeToggle,
}

var themeSetCmd = &cobra.Command{
	Use:   "set [light|dark]",
	Short: "Store a mode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThemeSet,
}

var themeWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the mode whenever the preference file changes",
	Args:  cobra.NoArgs,
	RunE:  runThemeWatch,
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeToggleCmd, themeSetCmd, themeWatchCmd)

	themeSetCmd.Flags().Var(&themeMode, "mode", "mode to store (light or dark)")
}

func themeStore() (*theme.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return theme.NewStore(cfg.Theme.File), nil
}

func runThemeShow(cmd *cobra.Command, _ []string) error {
	store, err := themeStore()
	if err != nil {
		return err
	}
	mode, err := store.Load()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), mode.String())
	return nil
}

func runThemeToggle(cmd *cobra.Command, _ []string) error {
	store, err := themeStore()
	if err != nil {
		return err
	}
	mode, err := store.Toggle()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), mode.String())
	return nil
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	mode := themeMode
	if len(args) == 1 {
		if err := mode.Set(args[0]); err != nil {
			return err
		}
	}
	if mode == "" {
		return fmt.Errorf("no mode given: pass light or dark")
	}

	store, err := themeStore()
	if err != nil {
		return err
	}
	if err := store.Save(mode); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), mode.String())
	return nil
}

func runThemeWatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	store := theme.NewStore(cfg.Theme.File)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	stopWatch, err := store.Watch(ctx, logger, func(m theme.Mode) {
		fmt.Fprintln(out, m.String())
	})
	if err != nil {
		return err
	}
	defer stopWatch()

	<-ctx.Done()
	return nil
}
