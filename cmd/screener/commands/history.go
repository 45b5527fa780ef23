package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"StockScreener/internal/config"
	"StockScreener/internal/recorder"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the SQLite execution log",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return withCode(ExitUsage, err)
	}
	if cfg.Storage.SQLitePath == "" {
		return withCode(ExitUsage, errors.New("history needs storage.sqlite_path (or SQLITE_PATH)"))
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath)
	if err != nil {
		return withCode(ExitUsage, err)
	}
	defer rec.Close()

	runs, err := rec.RecentRuns(historyLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSLOT\tSTATUS\tTIER\tATTEMPTS\tRECS\tDELIVERED")
	for _, r := range runs {
		tier := r.Tier
		if tier == "" {
			tier = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%t\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Slot, r.Status, tier, r.Attempts, r.Recommendations, r.Delivered)
	}
	return w.Flush()
}
