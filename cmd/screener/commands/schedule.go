package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockScreener/internal/model"
	"StockScreener/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run slots on their cron schedule until interrupted",
	Long: `Starts a cron scheduler (with seconds) in the configured timezone.
Each firing is an independent run bounded by run.timeout.

Example:
  screener schedule
  screener schedule --run-now heartbeat`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var runNow string

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&runNow, "run-now", "", "run this slot once at startup")
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	var startSlot model.TimeSlot
	if runNow != "" {
		slot, err := model.ParseTimeSlot(runNow)
		if err != nil {
			return withCode(ExitUsage, err)
		}
		startSlot = slot
	}

	a, err := newApp()
	if err != nil {
		return withCode(ExitUsage, err)
	}
	defer a.close()

	loc, err := time.LoadLocation(a.cfg.Schedule.Timezone)
	if err != nil {
		return withCode(ExitUsage, err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(ctx context.Context, slot model.TimeSlot) error {
		_, err := a.orch.Run(ctx, slot)
		return err
	}
	sched := scheduler.NewScheduler(ctx, loc, run, a.cfg.Run.Timeout, a.log)
	if err := sched.RegisterAll(a.cfg.Schedule.Crons); err != nil {
		return withCode(ExitUsage, err)
	}
	sched.Start()
	defer sched.Stop()

	if startSlot != "" {
		sched.RunAsync(startSlot)
	}

	a.log.Info().Str("timezone", loc.String()).Msg("screener is running, press Ctrl+C to stop")
	<-ctx.Done()
	a.log.Info().Msg("shutdown signal received, stopping")
	return nil
}
