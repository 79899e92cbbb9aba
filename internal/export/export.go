package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// QueryEcho records the effective query parameters inside the export
// metadata, so a saved export is self-describing.
type QueryEcho struct {
	Search         string   `json:"search,omitempty"`
	Authors        []string `json:"authors,omitempty"`
	AuthorIDs      []string `json:"author_ids,omitempty"`
	Institution    string   `json:"institution,omitempty"`
	InstitutionID  string   `json:"institution_id,omitempty"`
	AffiliatedOnly bool     `json:"affiliated_only,omitempty"`
	Sort           string   `json:"sort,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	Fields         []string `json:"fields,omitempty"`
}

// Metadata describes one export run.
type Metadata struct {
	Total     int       `json:"total"`
	Timestamp string    `json:"timestamp"`
	Query     QueryEcho `json:"query"`
}

// Document is the export artifact: the formatted works plus metadata.
// Downstream consumers ingest this file as-is; its shape is stable.
type Document struct {
	Works    []Record `json:"works"`
	Metadata Metadata `json:"metadata"`
}

// NewDocument assembles an export document. The timestamp is UTC ISO-8601.
func NewDocument(works []Record, query QueryEcho, now time.Time) Document {
	if works == nil {
		works = []Record{}
	}
	return Document{
		Works: works,
		Metadata: Metadata{
			Total:     len(works),
			Timestamp: now.UTC().Format(time.RFC3339),
			Query:     query,
		},
	}
}

// Write encodes the document with two-space indentation and no HTML
// escaping.
func (d Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// WriteFile writes the document to path, with "-" (or empty) meaning
// stdout.
func (d Document) WriteFile(path string) error {
	if path == "" || path == "-" {
		return d.Write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
