package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

func newAuditCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit FILE",
		Short: "Score a CSV file on every quality dimension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(args[0])
			if err != nil {
				return err
			}
			report := core.Audit(l.table, l.rules)
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func printReport(w io.Writer, r *core.AuditReport) {
	fmt.Fprintf(w, "Health score: %.2f\n", r.HealthScore)
	for _, d := range r.Dimensions {
		if d.Scored {
			fmt.Fprintf(w, "  %-13s %6.2f\n", d.Dimension, d.Score)
		} else {
			fmt.Fprintf(w, "  %-13s %6s\n", d.Dimension, "-")
		}
	}
	fmt.Fprintf(w, "Rows: %d  Columns: %d  Cell completeness: %.2f%%  Latest record: %s\n",
		r.RowCount, r.ColumnCount, r.CellCompleteness*100, r.LatestTimestampLabel())

	if len(r.Summary) > 0 {
		fmt.Fprintln(w, "\nFindings:")
		for _, s := range r.Summary {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	if len(r.ColumnStats) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COLUMN\tTYPE\tMISSING\tUNIQUE\tSTATUS")
		for _, s := range r.ColumnStats {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.Column, s.Type, s.MissingLabel, s.UniqueCount, s.Status)
		}
		tw.Flush()
	}
}

func newProfileCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile FILE",
		Short: "Per-column missing and distinct counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(args[0])
			if err != nil {
				return err
			}
			profiles := core.Profile(l.table)
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), profiles)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tTYPE\tMISSING\tRATIO\tDISTINCT")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%d\n", p.Name, p.TypeLabel, p.MissingCount, p.MissingRatio, p.DistinctCount)
			}
			return tw.Flush()
		},
	}
}

func newDictionaryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dictionary FILE",
		Short: "Column types, non-null counts and sample values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(args[0])
			if err != nil {
				return err
			}
			dict := core.DataDictionary(l.table)
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), dict)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tTYPE\tNON-NULL\tSAMPLE")
			for _, e := range dict {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Column, e.Type, e.NonNullCount, e.SampleValue)
			}
			return tw.Flush()
		},
	}
}

func newInsightCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insight FILE",
		Short: "Print the What / Why / So What / Now What narrative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load(args[0])
			if err != nil {
				return err
			}
			insight := core.SynthesizeInsight(l.table, l.rules)
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"insight": insight})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), insight)
			return err
		},
	}
}
