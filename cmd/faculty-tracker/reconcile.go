package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/export"
	"github.com/joseph-ayodele/faculty-tracker/internal/reconcile"
)

func newReconcileCmd(a *app) *cobra.Command {
	var (
		inPath     string
		outPath    string
		provenance bool
		threshold  float64
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge candidate rows from a CSV into one canonical row per person",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg := a.cfg
			if cmd.Flags().Changed("threshold") {
				if threshold <= 0 || threshold > 1 {
					return common.ConfigError("--threshold must be in (0, 1], got %v", threshold)
				}
				cfg.Reconcile.MergeThreshold = threshold
			}

			var in io.Reader = cmd.InOrStdin()
			name := "stdin"
			if inPath != "" && inPath != "-" {
				f, err := os.Open(inPath)
				if err != nil {
					return err
				}
				defer f.Close()
				in, name = f, inPath
			}
			records, err := export.ReadCSV(in, name)
			if err != nil {
				return err
			}

			res := reconcile.New(reconcile.Config{
				MergeThreshold: cfg.Reconcile.MergeThreshold,
				MinNameLength:  cfg.Reconcile.MinNameLength,
			}, a.logger).Reconcile(records)

			w := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, cerr := os.Create(outPath)
				if cerr != nil {
					return cerr
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}
			if err := export.WriteCSV(w, res.Entities, provenance); err != nil {
				return err
			}
			a.logger.Info("reconcile.written", "in", len(records), "dropped", res.Dropped, "out", len(res.Entities))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&inPath, "in", "i", "-", "candidate CSV (needs a name column); - for stdin")
	f.StringVarP(&outPath, "out", "o", "-", "canonical CSV; - for stdout")
	f.BoolVar(&provenance, "provenance", false, "add sources and locators columns")
	f.Float64Var(&threshold, "threshold", 0, "name similarity needed to merge, overrides the config")
	return cmd
}
