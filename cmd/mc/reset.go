package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/openclaw/missionctl/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear ingested events and offsets",
		Long: `Deletes all rows from events and ingestion_state so the next run
re-ingests every log from the beginning. The roster, sessions, cost history,
missions, and cron jobs are left intact.

Refuses to run when environment is "production".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "missionctl.yaml", "path to config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if cfg.Environment == "production" {
		return fmt.Errorf("refusing to reset the production environment")
	}

	if !skipConfirm && !confirmReset(cmd) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	if err := gormDB.Where("1 = 1").Delete(&models.Event{}).Error; err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	fmt.Fprintln(out, "Cleared events: OK")

	if err := gormDB.Where("1 = 1").Delete(&models.IngestionState{}).Error; err != nil {
		return fmt.Errorf("clear ingestion_state: %w", err)
	}
	fmt.Fprintln(out, "Cleared ingestion_state: OK")
	return nil
}

// confirmReset asks for confirmation. Without an attached terminal there is
// nobody to ask, so it declines; scripts must pass --yes.
func confirmReset(cmd *cobra.Command) bool {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "WARNING: This permanently deletes all ingested events and tail offsets.")

	if f, ok := cmd.InOrStdin().(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(out, "Not a terminal; pass --yes to confirm.")
		return false
	}

	fmt.Fprint(out, "Type \"yes\" to confirm: ")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
