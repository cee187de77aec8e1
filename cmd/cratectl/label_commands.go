package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

func newLabelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List followed labels and their crawl progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime(cmd.Context())
			if err != nil {
				return err
			}
			labels, err := rt.Labels.ListLabels(ctx.owner())
			if err != nil {
				return err
			}
			if len(labels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No labels")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), labelTable(labels))
			return nil
		},
	}
}

func labelTable(labels []*domain.Label) string {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		lastErr := ""
		if l.LastError != nil {
			lastErr = truncateCell(*l.LastError, 48)
		}
		rows = append(rows, []string{
			l.ID,
			l.Name,
			string(l.Status),
			fmt.Sprintf("%d/%d", l.CurrentPage, l.TotalPages),
			strconv.Itoa(l.RetryCount),
			strconv.FormatBool(l.Active),
			lastErr,
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Status", "Page", "Retries", "Active", "Last error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var name string
	var sourceURL string

	cmd := &cobra.Command{
		Use:   "add <label-id>",
		Short: "Follow a catalog label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime(cmd.Context())
			if err != nil {
				return err
			}
			label, err := rt.Labels.CreateLabel(ctx.owner(), args[0], name, sourceURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Following label %s (%s)\n", label.ID, label.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVar(&sourceURL, "url", "", "Catalog page of the label")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <label-id>",
		Short: "Clear a label's error state so crawling resumes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime(cmd.Context())
			if err != nil {
				return err
			}
			label, err := rt.Labels.RetryLabel(ctx.owner(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Label %s requeued at page %d\n", label.ID, label.CurrentPage)
			return nil
		},
	}
}

func truncateCell(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
