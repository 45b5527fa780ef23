package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/model"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List time slots with their universe size and schedule",
	Args:  cobra.NoArgs,
	RunE:  runSlots,
}

func init() {
	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, _ []string) error {
	crons := config.DefaultCrons()
	if cfg, err := config.Load(configFile); err == nil && len(cfg.Schedule.Crons) > 0 {
		crons = cfg.Schedule.Crons
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tKIND\tFETCH\tCANDIDATES\tCRON")
	for _, slot := range model.AllSlots {
		kind, fetch, cands := "message", "-", "-"
		if slot.IsScreening() {
			kind = "screening"
			if p, ok := collector.DefaultSlotPolicies[slot]; ok {
				fetch, cands = fmt.Sprint(p.Fetch), fmt.Sprint(p.Candidates)
			}
		}
		if slot.IsUrgent() {
			kind += " (urgent)"
		}
		spec := crons[string(slot)]
		if spec == "" {
			spec = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", slot, kind, fetch, cands, spec)
	}
	return w.Flush()
}
