package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/faculty-tracker/internal/ingest"
	"github.com/joseph-ayodele/faculty-tracker/internal/pipeline"
	"github.com/joseph-ayodele/faculty-tracker/internal/probe"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		docs       []string
		ranges     []string
		baseURL    string
		outDir     string
		formats    []string
		sqlitePath string
		noProfiles bool
		provenance bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Probe the directory, extract the documents and write the reconciled list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("docs") {
				cfg.Input.Documents = docs
			}
			if flags.Changed("ranges") {
				cfg.Probe.Ranges = ranges
			}
			if flags.Changed("base-url") {
				cfg.Fetch.BaseURL = baseURL
			}
			if flags.Changed("out") {
				cfg.Output.Dir = outDir
			}
			if flags.Changed("format") {
				cfg.Output.Formats = formats
			}
			if flags.Changed("sqlite") {
				cfg.Database.SQLitePath = sqlitePath
			}
			if noProfiles {
				cfg.Probe.FetchProfiles = false
			}
			if provenance {
				cfg.Output.Provenance = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			intervals, err := probe.ParseIntervals(cfg.Probe.Ranges)
			if err != nil {
				return err
			}
			var in pipeline.Input
			in.Intervals = intervals
			if len(cfg.Input.Documents) > 0 {
				found, _, err := ingest.NewFSScanner(a.logger).Scan(ctx, cfg.Input.Documents, cfg.Input.SkipHidden)
				if err != nil {
					return err
				}
				in.Documents = found
				if missing := pipeline.NewOCREngine(cfg, a.logger).MissingTools(); len(missing) > 0 {
					a.logger.Warn("run.tools.missing", "tools", missing)
				}
			}

			proc := pipeline.NewProcessor(cfg, pipeline.NewDeps(cfg, a.logger), a.logger)
			res, err := proc.Run(ctx, in)
			if err != nil {
				return err
			}
			written, err := pipeline.WriteOutputs(ctx, cfg, res, a.logger)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), res.Summary, written)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&docs, "docs", nil, "PDF files or directories to extract")
	f.StringSliceVar(&ranges, "ranges", nil, "identifier ranges to probe, e.g. 0-700,1000000-1000700")
	f.StringVar(&baseURL, "base-url", "", "profile directory host, e.g. https://portal.example.pt")
	f.StringVar(&outDir, "out", "", "output directory")
	f.StringSliceVar(&formats, "format", nil, "output formats: csv, json, xlsx")
	f.StringVar(&sqlitePath, "sqlite", "", "also save the snapshot to this SQLite file")
	f.BoolVar(&noProfiles, "no-profiles", false, "skip reading the detail page of each probed profile")
	f.BoolVar(&provenance, "provenance", false, "add sources and locators columns")
	return cmd
}
