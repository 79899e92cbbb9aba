package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oat-cli/oat/internal/roster"
)

var (
	rosterDepartment  string
	rosterJobTitle    string
	rosterInteractive bool
)

func init() {
	rosterCmd.Flags().StringVar(&rosterDepartment, "department", "", "Keep only rows whose department contains this text")
	rosterCmd.Flags().StringVar(&rosterJobTitle, "job-title", "", "Keep only rows whose job title contains this text")
	rosterCmd.Flags().BoolVar(&rosterInteractive, "interactive", false, "Pick department and job title from the file's values")
	rootCmd.AddCommand(rosterCmd)
}

var rosterCmd = &cobra.Command{
	Use:   "roster <file>",
	Short: "Parse a roster file and print the authors it yields",
	Long: `Parse a roster file and print the author entries it would feed
into a works search. Use this to check filters and name building before
an export.

Supports institutional compensation report CSVs, YAML author lists,
BibTeX bibliographies, and plain name lists (one per line, or TSV with a
header row). --interactive lists the distinct departments and job titles
found in a CSV report and prompts for a pick; press Enter to skip a
filter.

Examples:
  oat roster report.csv --department "Soil and Crop"
  oat roster report.csv --interactive
  oat roster authors.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runRoster,
}

// RosterResult reports the parsed entries with the filter that produced
// them.
type RosterResult struct {
	Count      int            `json:"count"`
	Department string         `json:"department,omitempty"`
	JobTitle   string         `json:"job_title,omitempty"`
	Entries    []roster.Entry `json:"entries"`
}

func runRoster(cmd *cobra.Command, args []string) error {
	path := args[0]
	filter := roster.Filter{Department: rosterDepartment, JobTitle: rosterJobTitle}

	var entries []roster.Entry
	var err error
	if rosterInteractive {
		entries, filter, err = pickRosterEntries(path, os.Stdin, os.Stderr)
	} else {
		entries, err = roster.Load(path, filter)
	}
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", path, err))
	}

	if humanOutput {
		fmt.Printf("%d authors:\n", len(entries))
		for _, e := range entries {
			line := "  " + e.Name
			var ctx []string
			if e.Department != "" {
				ctx = append(ctx, e.Department)
			}
			if e.JobTitle != "" {
				ctx = append(ctx, e.JobTitle)
			}
			if len(ctx) > 0 {
				line += "  (" + strings.Join(ctx, ", ") + ")"
			}
			fmt.Println(line)
		}
		return nil
	}
	return outputJSON(RosterResult{
		Count:      len(entries),
		Department: filter.Department,
		JobTitle:   filter.JobTitle,
		Entries:    entries,
	})
}

// pickRosterEntries loads a compensation report and prompts for the
// department and job title filters from the file's distinct values.
func pickRosterEntries(path string, in io.Reader, out io.Writer) ([]roster.Entry, roster.Filter, error) {
	var filter roster.Filter

	rows, err := roster.ParseCompReport(path)
	if err != nil {
		return nil, filter, err
	}

	reader := bufio.NewReader(in)
	filter.Department, err = promptPick(reader, out, "department", roster.UniqueValues(rows, roster.ColDepartment))
	if err != nil {
		return nil, filter, err
	}
	filter.JobTitle, err = promptPick(reader, out, "job title", roster.UniqueValues(rows, roster.ColJobTitle))
	if err != nil {
		return nil, filter, err
	}

	rows = roster.FilterRows(rows, filter)
	if len(rows) == 0 {
		return nil, filter, roster.ErrNoMatchingRows
	}
	entries := roster.ToEntries(rows)
	if len(entries) == 0 {
		return nil, filter, roster.ErrNoEntries
	}
	return entries, filter, nil
}

// promptPick shows a numbered value list and reads one selection. Enter
// skips, returning "".
func promptPick(in *bufio.Reader, out io.Writer, label string, values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}

	fmt.Fprintf(out, "Select a %s (Enter to skip):\n", label)
	for i, v := range values {
		fmt.Fprintf(out, "  %d. %s\n", i+1, v)
	}
	fmt.Fprintf(out, "> ")

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return "", nil
		}
		return "", fmt.Errorf("reading selection: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(values) {
		return "", fmt.Errorf("invalid selection %q: enter a number between 1 and %d", line, len(values))
	}
	return values[n-1], nil
}
