package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the playback queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			qs := domain.QueueStatus(status)
			if status != "" && !qs.Valid() {
				return fmt.Errorf("unknown queue status %q", status)
			}
			rt, err := ctx.runtime(cmd.Context())
			if err != nil {
				return err
			}
			items, err := rt.Playback.ListQueue(ctx.owner(), qs, limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), queueTable(items))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending (default) or played")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum items to show")
	return cmd
}

func queueTable(items []*domain.QueueItem) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(it.Priority),
			it.Title,
			"https://youtu.be/" + it.VideoID,
			string(it.Source),
			it.AddedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return renderTable(
		[]string{"Prio", "Title", "Video", "Source", "Added"},
		rows,
		[]columnAlignment{alignRight},
	)
}
