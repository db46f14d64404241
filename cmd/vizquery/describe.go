package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show per-column statistics for every table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		visualizer, cleanup, err := buildVisualizer(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		stats, err := visualizer.DescribeDatabase(cmd.Context())
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Table", "Column", "Type", "Count", "Min", "Mean", "Max", "Unique", "Top", "Freq"})
		for _, s := range stats {
			table.Append([]string{
				s.Table,
				s.Column,
				s.DeclaredType,
				fmt.Sprintf("%d", s.Count),
				formatFloat(s.Min),
				formatFloat(s.Mean),
				formatFloat(s.Max),
				formatInt(s.Unique),
				formatString(s.Top),
				formatInt(s.Freq),
			})
		}
		table.Render()
		return nil
	},
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
