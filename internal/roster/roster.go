// Package roster loads author rosters from compensation-report CSV files,
// YAML lists, and plain text files, producing entries ready for name
// resolution.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical compensation-report column names.
const (
	ColLastName     = "Last Name"
	ColFirstInitial = "First Initial"
	ColDepartment   = "Department"
	ColJobTitle     = "Job Title"
	ColUnitName     = "Unit Name"
)

var requiredColumns = []string{ColLastName, ColFirstInitial, ColDepartment, ColJobTitle}

// headerAliases maps column name variants to canonical names.
var headerAliases = map[string]string{
	"lastname":      ColLastName,
	"last name":     ColLastName,
	"firstinitial":  ColFirstInitial,
	"first initial": ColFirstInitial,
	"jobtitle":      ColJobTitle,
	"job title":     ColJobTitle,
	"department":    ColDepartment,
	"unitname":      ColUnitName,
	"unit name":     ColUnitName,
	"college":       ColUnitName,
}

// Errors.
var (
	ErrEmptyFile      = errors.New("roster file is empty")
	ErrNoDataRows     = errors.New("roster file contains no data rows")
	ErrNoMatchingRows = errors.New("no rows match the specified filters")
	ErrNoEntries      = errors.New("no valid author entries after filtering")
)

// MissingColumnsError reports every required column absent from a
// compensation report, collected rather than first-only.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "roster file missing required columns: " + strings.Join(e.Columns, ", ")
}

// Entry is one roster author plus the context fields that sharpen name
// resolution.
type Entry struct {
	Name         string `yaml:"name" json:"name"`
	LastName     string `yaml:"last_name" json:"last_name,omitempty"`
	FirstInitial string `yaml:"first_initial" json:"first_initial,omitempty"`
	Department   string `yaml:"department" json:"department,omitempty"`
	College      string `yaml:"college" json:"college,omitempty"`
	JobTitle     string `yaml:"job_title" json:"job_title,omitempty"`
}

// Filter restricts roster rows by case-insensitive substring match; both
// set means both must match.
type Filter struct {
	Department string
	JobTitle   string
}

func (f Filter) isZero() bool {
	return f.Department == "" && f.JobTitle == ""
}

// Row is one compensation-report row keyed by canonical column name.
type Row map[string]string

// Load reads a roster file, dispatching on extension: .csv is the
// compensation-report format, .yaml/.yml a list of entry mappings, .bib a
// BibTeX bibliography whose author fields supply the names, and anything
// else plain text (one name per line, or TSV when the first line is a
// tab-separated header with a last-name column). Filters apply to CSV and
// YAML rosters; bibliographies and plain name lists carry no fields to
// filter on.
func Load(path string, filter Filter) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCompReport(path, filter)
	case ".yaml", ".yml":
		return loadYAML(path, filter)
	case ".bib":
		return loadBibTeX(path)
	default:
		return loadPlain(path)
	}
}

// loadCompReport parses and filters a compensation-report CSV.
func loadCompReport(path string, filter Filter) ([]Entry, error) {
	rows, err := ParseCompReport(path)
	if err != nil {
		return nil, err
	}

	filtered := FilterRows(rows, filter)
	if len(filtered) == 0 {
		return nil, ErrNoMatchingRows
	}

	entries := ToEntries(filtered)
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// ParseCompReport reads a compensation-report CSV into rows keyed by
// canonical column names. Quoted fields with embedded commas are handled
// by the CSV reader; a UTF-8 BOM on the header is tolerated.
func ParseCompReport(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	canonical := make([]string, len(header))
	for i, h := range header {
		canonical[i] = normalizeHeader(h)
	}

	if missing := missingColumns(canonical); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		row := make(Row, len(canonical))
		for i, name := range canonical {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataRows, path)
	}
	return rows, nil
}

func normalizeHeader(header string) string {
	header = strings.TrimSpace(header)
	if canonical, ok := headerAliases[strings.ToLower(header)]; ok {
		return canonical
	}
	return header
}

func missingColumns(canonical []string) []string {
	present := make(map[string]struct{}, len(canonical))
	for _, name := range canonical {
		present[name] = struct{}{}
	}
	var missing []string
	for _, required := range requiredColumns {
		if _, ok := present[required]; !ok {
			missing = append(missing, required)
		}
	}
	sort.Strings(missing)
	return missing
}

// UniqueValues returns the sorted unique non-empty values of one column,
// for interactive selection.
func UniqueValues(rows []Row, column string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, row := range rows {
		v := strings.TrimSpace(row[column])
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// FilterRows applies the filter with case-insensitive substring matching.
func FilterRows(rows []Row, filter Filter) []Row {
	if filter.isZero() {
		return rows
	}
	dept := strings.ToLower(filter.Department)
	title := strings.ToLower(filter.JobTitle)

	var out []Row
	for _, row := range rows {
		if dept != "" && !strings.Contains(strings.ToLower(row[ColDepartment]), dept) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(row[ColJobTitle]), title) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// ToEntries converts rows to author entries, deduplicating by (last name,
// first initial, department) so distinct people sharing an initial in
// different departments both survive.
func ToEntries(rows []Row) []Entry {
	seen := make(map[[3]string]struct{})
	var entries []Entry
	for _, row := range rows {
		lastName := strings.TrimSpace(row[ColLastName])
		firstInitial := strings.TrimSpace(row[ColFirstInitial])
		department := strings.TrimSpace(row[ColDepartment])
		college := strings.TrimSpace(row[ColUnitName])
		jobTitle := strings.TrimSpace(row[ColJobTitle])

		if lastName == "" || firstInitial == "" {
			continue
		}

		key := [3]string{strings.ToLower(lastName), strings.ToLower(firstInitial), strings.ToLower(department)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entries = append(entries, Entry{
			Name:         buildName(firstInitial, lastName),
			LastName:     lastName,
			FirstInitial: firstInitial,
			Department:   department,
			College:      college,
			JobTitle:     jobTitle,
		})
	}
	return entries
}

// buildName joins a first name or initial with a last name. A single
// letter gets its abbreviation period; a full first name joins plainly.
func buildName(first, last string) string {
	first = strings.TrimRight(strings.TrimSpace(first), ".")
	last = strings.TrimSpace(last)
	if first == "" {
		return last
	}
	if len([]rune(first)) == 1 {
		return first + ". " + last
	}
	return first + " " + last
}

// loadYAML reads a roster as a YAML list of entries.
func loadYAML(path string, filter Filter) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataRows, path)
	}

	var out []Entry
	dept := strings.ToLower(filter.Department)
	title := strings.ToLower(filter.JobTitle)
	for _, e := range entries {
		if e.Name == "" {
			e.Name = buildName(e.FirstInitial, e.LastName)
		}
		if e.Name == "" {
			continue
		}
		if dept != "" && !strings.Contains(strings.ToLower(e.Department), dept) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(e.JobTitle), title) {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		if !filter.isZero() {
			return nil, ErrNoMatchingRows
		}
		return nil, ErrNoEntries
	}
	return out, nil
}

// loadPlain reads a plain text roster: one name per line, or TSV rows when
// the first line is a tab-separated header carrying a last-name column.
func loadPlain(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimPrefix(string(data), "\uFEFF"), "\n")
	if headers := detectTSVHeader(lines[0]); headers != nil {
		return parseTSV(lines[1:], headers)
	}

	var entries []Entry
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, Entry{Name: line})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataRows, path)
	}
	return entries, nil
}

// detectTSVHeader returns the column names when the line is a tab-separated
// header containing a last-name column, nil for plain text.
func detectTSVHeader(line string) []string {
	if !strings.Contains(line, "\t") {
		return nil
	}
	columns := strings.Split(line, "\t")
	for i, c := range columns {
		columns[i] = strings.TrimSpace(c)
	}
	for _, c := range columns {
		switch strings.ToLower(c) {
		case "lastname", "last_name":
			return columns
		}
	}
	return nil
}

// parseTSV maps tab-separated rows through the header.
func parseTSV(lines, headers []string) ([]Entry, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(h)] = i
	}
	get := func(values []string, keys ...string) string {
		for _, key := range keys {
			if i, ok := index[key]; ok && i < len(values) {
				if v := strings.TrimSpace(values[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	var entries []Entry
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := strings.Split(line, "\t")

		lastName := get(values, "lastname", "last_name")
		if lastName == "" {
			continue
		}
		first := get(values, "firstinitial", "first_initial", "firstname", "first_name")

		entries = append(entries, Entry{
			Name:         buildName(first, lastName),
			LastName:     lastName,
			FirstInitial: first,
			Department:   get(values, "department"),
			College:      get(values, "college"),
		})
	}
	if len(entries) == 0 {
		return nil, ErrNoDataRows
	}
	return entries, nil
}
