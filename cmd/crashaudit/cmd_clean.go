package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

type cleanOptions struct {
	standardize    []string
	fill           []string
	impute         []string
	dedupe         bool
	dedupeOn       []string
	dropMissing    []string
	dropAnyMissing bool
	minYear        []string
	output         string
	audit          bool
}

// cleanStep is one queued engine operation.
type cleanStep struct {
	name string
	run  func(e *core.CleaningEngine) (*core.Table, string, error)
}

func newCleanCmd(opts *globalOptions) *cobra.Command {
	co := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean FILE",
		Short: "Apply cleaning steps and write the cleaned CSV",
		Long: `clean loads FILE and applies the requested steps in a fixed order:
standardize, fill, impute, dedupe, drop-missing, min-year. Each step is
recorded in the transformation history, which is printed at the end.

Examples:
  crashaudit clean crashes.csv --standardize "Crash Date/Time" --dedupe -o clean.csv
  crashaudit clean crashes.csv --impute "Speed Limit=Median" --fill "Weather=UNKNOWN"
  crashaudit clean crashes.csv --min-year "Vehicle Year=1990" --audit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := co.plan()
			if err != nil {
				return err
			}
			if len(steps) == 0 {
				return fmt.Errorf("no cleaning steps requested")
			}

			l, err := opts.load(args[0])
			if err != nil {
				return err
			}
			engine := core.NewCleaningEngine(l.table, core.WithLogger(opts.logger))
			out := cmd.OutOrStdout()

			before := core.TakeSnapshot(engine.Table())
			for _, step := range steps {
				_, msg, err := step.run(engine)
				if err != nil {
					return fmt.Errorf("%s: %w", step.name, err)
				}
				fmt.Fprintln(out, msg)
			}
			after := core.TakeSnapshot(engine.Table())

			if co.output != "" {
				if err := writeTable(co.output, engine.Table()); err != nil {
					return err
				}
				opts.logger.Info("wrote cleaned file", "path", co.output, "rows", engine.Table().RowCount())
			}

			if opts.jsonOut {
				result := map[string]any{
					"history": engine.History(),
					"before":  before,
					"after":   after,
				}
				if co.audit {
					result["audit"] = core.Audit(engine.Table(), l.rules)
				}
				return writeJSON(out, result)
			}

			printSnapshots(out, before, after)
			fmt.Fprintln(out, "\nHistory:")
			for _, h := range engine.History() {
				fmt.Fprintf(out, "  %s  %-22s %s\n", h.Timestamp.Format(core.TimestampLayout), h.Operation, h.Impact)
			}
			if co.audit {
				fmt.Fprintln(out)
				printReport(out, core.Audit(engine.Table(), l.rules))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&co.standardize, "standardize", nil, "parse these columns as timestamps")
	f.StringArrayVar(&co.fill, "fill", nil, "fill missing values, as COLUMN=VALUE (repeatable)")
	f.StringArrayVar(&co.impute, "impute", nil, "impute missing values, as COLUMN=Mean|Median|Mode|Drop (repeatable)")
	f.BoolVar(&co.dedupe, "dedupe", false, "drop duplicate rows")
	f.StringSliceVar(&co.dedupeOn, "dedupe-on", nil, "compare only these columns when dropping duplicates")
	f.StringSliceVar(&co.dropMissing, "drop-missing", nil, "drop rows missing a value in any of these columns")
	f.BoolVar(&co.dropAnyMissing, "drop-any-missing", false, "drop rows missing a value in any column")
	f.StringArrayVar(&co.minYear, "min-year", nil, "drop rows before a year, as COLUMN=YEAR (repeatable)")
	f.StringVarP(&co.output, "output", "o", "", "write the cleaned table to this CSV file")
	f.BoolVar(&co.audit, "audit", false, "audit the cleaned table")
	return cmd
}

// plan validates the flags and returns the steps in execution order.
func (co *cleanOptions) plan() ([]cleanStep, error) {
	var steps []cleanStep

	for _, col := range co.standardize {
		steps = append(steps, cleanStep{"standardize " + col, func(e *core.CleaningEngine) (*core.Table, string, error) {
			return e.StandardizeTemporal(col)
		}})
	}
	for _, kv := range co.fill {
		col, value, err := splitAssignment("fill", kv)
		if err != nil {
			return nil, err
		}
		steps = append(steps, cleanStep{"fill " + col, func(e *core.CleaningEngine) (*core.Table, string, error) {
			return e.FillMissing(col, value)
		}})
	}
	for _, kv := range co.impute {
		col, name, err := splitAssignment("impute", kv)
		if err != nil {
			return nil, err
		}
		strategy, err := core.ParseImputeStrategy(name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, cleanStep{"impute " + col, func(e *core.CleaningEngine) (*core.Table, string, error) {
			return e.Impute(col, strategy)
		}})
	}
	if co.dedupe || len(co.dedupeOn) > 0 {
		subset := co.dedupeOn
		steps = append(steps, cleanStep{"dedupe", func(e *core.CleaningEngine) (*core.Table, string, error) {
			return e.DropDuplicates(subset...)
		}})
	}
	if co.dropAnyMissing && len(co.dropMissing) > 0 {
		return nil, fmt.Errorf("--drop-missing and --drop-any-missing are mutually exclusive")
	}
	if co.dropAnyMissing || len(co.dropMissing) > 0 {
		cols := co.dropMissing
		steps = append(steps, cleanStep{"drop-missing", func(e *core.CleaningEngine) (*core.Table, string, error) {
			return e.DropMissing(cols...)
		}})
	}
	for _, kv := range co.minYear {
		col, raw, err := splitAssignment("min-year", kv)
		if err != nil {
			return nil, err
		}
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return nil, fmt.Errorf("--min-year %q: year must be a positive integer", kv)
		}
		steps = append(steps, cleanStep{"min-year " + col, func(e *core.CleaningEngine) (*core.Table, string, error) {
			return e.FilterMinYear(col, year)
		}})
	}
	return steps, nil
}

// splitAssignment splits COLUMN=VALUE on the first '='.
func splitAssignment(flag, kv string) (string, string, error) {
	col, value, ok := strings.Cut(kv, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return "", "", fmt.Errorf("--%s %q: expected COLUMN=VALUE", flag, kv)
	}
	return col, strings.TrimSpace(value), nil
}

func writeTable(path string, t *core.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := core.WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printSnapshots(w io.Writer, before, after core.Snapshot) {
	fmt.Fprintf(w, "\n%-15s %10s %10s\n", "", "BEFORE", "AFTER")
	fmt.Fprintf(w, "%-15s %10d %10d\n", "rows", before.RowCount, after.RowCount)
	fmt.Fprintf(w, "%-15s %10d %10d\n", "missing cells", before.MissingCells, after.MissingCells)
	fmt.Fprintf(w, "%-15s %10d %10d\n", "duplicate rows", before.DuplicateRows, after.DuplicateRows)
}
