package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/cratedigger/internal/app"
)

func newStepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "step <label-id>",
		Short: "Advance a label by exactly one crawl step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime(cmd.Context())
			if err != nil {
				return err
			}
			res, err := rt.Crawler.AdvanceLabel(cmd.Context(), ctx.owner(), args[0])
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (done=%t)\n", res.Outcome, res.Message, res.Done)
			}
			return err
		},
	}
}

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var maxSteps int
	var pause time.Duration

	cmd := &cobra.Command{
		Use:   "crawl <label-id>",
		Short: "Step a label until it completes, errors or hits --max-steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := 1; maxSteps <= 0 || i <= maxSteps; i++ {
				res, err := rt.Crawler.AdvanceLabel(cmd.Context(), ctx.owner(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "[%d] %s: %s\n", i, res.Outcome, res.Message)
				if res.Done || res.Outcome == app.OutcomeError {
					return nil
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(pause):
				}
			}
			fmt.Fprintf(out, "Stopped after %d steps\n", maxSteps)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Stop after this many steps (0 means no limit)")
	cmd.Flags().DurationVar(&pause, "pause", 0, "Pause between steps")
	return cmd
}
