package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crashaudit/internal/core"
	"github.com/JonMunkholm/crashaudit/internal/logging"
	"github.com/JonMunkholm/crashaudit/internal/rules"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	dataset   string
	rulesFile string
	jsonOut   bool
	logLevel  string
	logFormat string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "crashaudit",
		Short: "Data quality audits for crash report datasets",
		Long: `crashaudit loads a CSV file as a registered dataset and reports on its
data quality: completeness, consistency, accuracy and timeliness, plus a
short narrative insight. The clean command applies cleaning steps and
writes the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.dataset, "dataset", "d", "crash_reports", "registered dataset key")
	pf.StringVarP(&opts.rulesFile, "rules", "r", "", "YAML file overriding the dataset's audit rules")
	pf.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newAuditCmd(opts),
		newProfileCmd(opts),
		newDictionaryCmd(opts),
		newInsightCmd(opts),
		newCleanCmd(opts),
		newDatasetsCmd(opts),
	)
	return root
}

// loaded is a CSV file read as a dataset, with its effective rules.
type loaded struct {
	table    *core.Table
	rules    core.AuditConfig
	failures []core.ParseFailure
}

func (o *globalOptions) load(path string) (*loaded, error) {
	def, ok := core.Get(o.dataset)
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q (available: %v)", o.dataset, core.Keys())
	}
	cfg, err := rules.Load(o.rulesFile, def.Rules)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := core.ReadCSV(f, def.FieldSpecs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, pf := range res.ParseFailures {
		o.logger.Warn("values failed to parse", "column", pf.Column, "count", pf.Count)
	}
	o.logger.Info("loaded file", "path", path, "rows", res.Table.RowCount(), "columns", res.Table.ColumnCount())
	return &loaded{table: res.Table, rules: cfg, failures: res.ParseFailures}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDatasetsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List registered datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs := core.All()
			if opts.jsonOut {
				infos := make([]core.DatasetInfo, len(defs))
				for i, d := range defs {
					infos[i] = d.Info
				}
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			for _, d := range defs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%d columns)\n", d.Info.Key, d.Info.Label, len(d.Info.Columns))
			}
			return nil
		},
	}
}
