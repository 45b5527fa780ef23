package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockScreener/internal/model"
	"StockScreener/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run <slot>",
	Short: "Run one screening or message slot and exit",
	Long: `Runs the tier chain for the slot, dispatches the first result and exits.

Exit status is 0 when a notification was delivered or backed up, 1 when
every tier and the minimal fallback failed, 2 on usage or config errors.

Example:
  screener run afternoon_scan`,
	Args: cobra.ExactArgs(1),
	RunE: runSlot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSlot(cmd *cobra.Command, args []string) error {
	slot, err := model.ParseTimeSlot(args[0])
	if err != nil {
		return withCode(ExitUsage, err)
	}

	a, err := newApp()
	if err != nil {
		return withCode(ExitUsage, err)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Run.Timeout)
	defer cancel()

	out, err := a.orch.Run(ctx, slot)
	if err != nil {
		code := ExitUsage
		if errors.Is(err, pipeline.ErrAllTiersExhausted) {
			code = ExitExhausted
		}
		return withCode(code, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s", slot, out.Status)
	if out.Tier != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " via %s", out.Tier)
	}
	if out.ResultPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " (%s)", out.ResultPath)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
