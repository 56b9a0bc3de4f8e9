package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/faculty-tracker/internal/fetch"
	"github.com/joseph-ayodele/faculty-tracker/internal/probe"
	"github.com/joseph-ayodele/faculty-tracker/internal/recognize"
)

func newProbeCmd(a *app) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "probe <range>...",
		Short: "List the identifiers that resolve to a profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if baseURL != "" {
				cfg.Fetch.BaseURL = baseURL
			}
			cfg.Probe.Ranges = args
			if err := cfg.Validate(); err != nil {
				return err
			}
			intervals, err := probe.ParseIntervals(args)
			if err != nil {
				return err
			}

			client := fetch.NewClient(fetch.Config{
				UserAgent:          cfg.Fetch.UserAgent,
				Timeout:            cfg.Fetch.Timeout.Duration,
				Delay:              cfg.Fetch.Delay.Duration,
				InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
				MaxBodyBytes:       cfg.Fetch.MaxBodyBytes,
			}, a.logger)
			p := probe.NewProber(client, recognize.New(recognize.DefaultConfig()), probe.Config{
				BaseURL:      cfg.Fetch.BaseURL,
				PathTemplate: cfg.Probe.PathTemplate,
				Workers:      cfg.Probe.Workers,
				BatchSize:    cfg.Probe.BatchSize,
				BatchPause:   cfg.Probe.BatchPause.Duration,
				MinBodyBytes: cfg.Probe.MinBodyBytes,
				MinTextChars: cfg.Probe.MinTextChars,
			}, a.logger)

			rep, err := p.Probe(cmd.Context(), intervals)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(rep.Results))
			for _, r := range rep.Results {
				rows = append(rows, []string{strconv.FormatInt(r.NumericID, 10), r.DisplayName, r.SourceURL})
			}
			if err := renderTable(out, []string{"ID", "Name", "URL"}, rows); err != nil {
				return err
			}
			return renderTable(out, intervalHeaders, intervalRows(rep.Stats))
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "profile directory host")
	return cmd
}
