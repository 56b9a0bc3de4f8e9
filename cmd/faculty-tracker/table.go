package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/pipeline"
	"github.com/joseph-ayodele/faculty-tracker/internal/probe"
)

var intervalHeaders = []string{"Interval", "Probed", "Found", "Errors", "Rejected", "Cancelled"}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w)
	hs := make([]any, len(headers))
	for i, h := range headers {
		hs[i] = h
	}
	table.Header(hs...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

func intervalRows(stats []probe.IntervalStats) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		var rejected []string
		for why, n := range s.Rejected {
			rejected = append(rejected, fmt.Sprintf("%s=%d", why, n))
		}
		sort.Strings(rejected)
		rows = append(rows, []string{
			s.Interval.String(),
			strconv.Itoa(s.Probed),
			strconv.Itoa(s.Found),
			strconv.Itoa(s.Errors),
			strings.Join(rejected, " "),
			strconv.Itoa(s.Cancelled),
		})
	}
	return rows
}

func printSummary(w io.Writer, s pipeline.Summary, written []string) error {
	if _, err := fmt.Fprintf(w, "run %s finished in %s\n", s.RunID, s.Durations.Total.Round(time.Millisecond)); err != nil {
		return err
	}
	if len(s.Intervals) > 0 {
		if err := renderTable(w, intervalHeaders, intervalRows(s.Intervals)); err != nil {
			return err
		}
	}

	if len(s.Documents) > 0 {
		headers := []string{"Document", "Pages", "Candidates"}
		var rows [][]string
		for i, d := range s.Documents {
			row := []string{d.Path, strconv.Itoa(d.Pages), strconv.Itoa(d.Candidates)}
			for _, st := range d.Strategies {
				if i == 0 {
					headers = append(headers, string(st.Strategy))
				}
				row = append(row, string(st.Status))
			}
			rows = append(rows, row)
		}
		if err := renderTable(w, headers, rows); err != nil {
			return err
		}
	}

	var kinds []string
	for k := range s.Candidates {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	var rows [][]string
	for _, k := range kinds {
		rows = append(rows, []string{"candidates: " + k, strconv.Itoa(s.Candidates[constants.SourceKind(k)])})
	}
	rows = append(rows,
		[]string{"profiles collected", fmt.Sprintf("%d/%d", s.Profiles.Collected, s.Profiles.Attempted)},
		[]string{"dropped", strconv.Itoa(s.Dropped)},
		[]string{"canonical", strconv.Itoa(s.Canonical)},
	)
	for _, p := range written {
		rows = append(rows, []string{"written", p})
	}
	return renderTable(w, []string{"Metric", "Value"}, rows)
}
