package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/faculty-tracker/internal/export"
	"github.com/joseph-ayodele/faculty-tracker/internal/extract"
	"github.com/joseph-ayodele/faculty-tracker/internal/ingest"
	"github.com/joseph-ayodele/faculty-tracker/internal/pipeline"
)

func newExtractCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Run every extraction strategy on one PDF and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			doc, err := ingest.NewFSScanner(a.logger).HashPath(ctx, args[0])
			if err != nil {
				return err
			}

			engine := pipeline.NewOCREngine(a.cfg, a.logger)
			if missing := engine.MissingTools(); len(missing) > 0 {
				a.logger.Warn("extract.tools.missing", "tools", missing)
			}
			ensemble := extract.NewEnsemble(extract.DefaultStrategies(engine, a.logger),
				extract.WithLogger(a.logger), extract.WithStrategyTimeout(a.cfg.Queue.ProcessTimeout.Duration))
			rep := ensemble.Run(ctx, doc)

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, cerr := os.Create(outPath)
				if cerr != nil {
					return fmt.Errorf("create %s: %w", outPath, cerr)
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}
			if err := export.WriteReport(w, rep); err != nil {
				return err
			}

			rows := make([][]string, 0, len(rep.Outcomes))
			for _, o := range rep.Outcomes {
				rows = append(rows, []string{string(o.Strategy), string(o.Status),
					fmt.Sprintf("%d", len(o.Pages)), fmt.Sprintf("%d", len(o.Tables)), o.Duration.String(), o.ErrorDetail})
			}
			return renderTable(cmd.ErrOrStderr(), []string{"Strategy", "Status", "Pages", "Tables", "Duration", "Error"}, rows)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the JSON report here instead of stdout")
	return cmd
}
