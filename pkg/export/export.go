// Package export serializes currently loaded console records into
// downloadable CSV or JSON documents. Export is client-side only: the data
// is whatever the page displays, already filtered, and no export endpoint is
// called.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Column describes one CSV column for records of type T.
type Column[T any] struct {
	// Header is the column title in the first row.
	Header string

	// Value renders a record's cell.
	Value func(T) string
}

// CSV writes a header row followed by one row per item.
func CSV[T any](w io.Writer, columns []Column[T], items []T) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns defined")
	}

	writer := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, column := range columns {
		header[i] = column.Header
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(columns))
	for _, item := range items {
		for i, column := range columns {
			row[i] = column.Value(item)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// document is the JSON export envelope.
type document[T any] struct {
	ExportedAt time.Time `json:"exportedAt"`
	Resource   string    `json:"resource"`
	Rows       int       `json:"rows"`
	Items      []T       `json:"items"`
}

// JSON writes the items as an indented document with an export header
// carrying the timestamp, resource name and row count.
func JSON[T any](w io.Writer, resource string, items []T) error {
	doc := document[T]{
		ExportedAt: time.Now().UTC(),
		Resource:   resource,
		Rows:       len(items),
		Items:      items,
	}
	if doc.Items == nil {
		doc.Items = []T{}
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export document: %w", err)
	}

	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write export document: %w", err)
	}
	return nil
}

// Filename builds the download name for an export, e.g.
// "locales-export-2026-08-25.csv".
func Filename(resource, extension string) string {
	return fmt.Sprintf("%s-export-%s.%s", resource, time.Now().Format("2006-01-02"), extension)
}
