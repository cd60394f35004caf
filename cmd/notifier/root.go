package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vaccine_slot_notifier/internal/domain/slot"
	"vaccine_slot_notifier/internal/infra/scheduler"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

type rootOptions struct {
	envFiles []string
	dryRun   bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "vaccine-notifier",
		Short:        "Checks the vaccine reservation API and broadcasts newly opened slots",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv file(s) to load (default .env)")
	root.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "log the message instead of sending it")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newDaemonCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single check cycle and exit (for external schedulers)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), opts)
		},
	}
}

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	var runAtStart bool
	c := &cobra.Command{
		Use:   "daemon",
		Short: "Keep running and check on the CRON_SPEC schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer deps.Close()

			s := scheduler.NewSlotCheckScheduler(deps.service, deps.log, deps.cfg.CronSpec, jobTimeout(deps.cfg.HTTPTimeout), slot.JST)
			if runAtStart {
				s.RunOnce(ctx)
			}
			if err := s.Start(); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit // Block until a signal is received

			deps.log.Info("Shutting down...")
			s.Stop()
			return nil
		},
	}
	c.Flags().BoolVar(&runAtStart, "run-at-start", true, "run one cycle immediately instead of waiting for the first tick")
	return c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vaccine-notifier %s (commit %s, built %s)\n", Version, CommitSHA, BuildDate)
		},
	}
}

func runOnce(ctx context.Context, opts *rootOptions) error {
	deps, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, cancel := context.WithTimeout(ctx, jobTimeout(deps.cfg.HTTPTimeout))
	defer cancel()

	res, err := deps.service.RunCycle(ctx, time.Now().In(slot.JST))
	if err != nil {
		return err
	}
	deps.log.WithField("outcome", res.Outcome).Info("Done")
	return nil
}

// A cycle makes at most two HTTP calls plus two store round trips.
func jobTimeout(httpTimeout time.Duration) time.Duration {
	return 3 * httpTimeout
}
