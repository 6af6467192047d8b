package export

import (
	"fmt"
	"time"
)

// Column describes one table column: Key indexes the row map, Label is printed.
type Column struct {
	Key   string
	Label string
}

// Dataset defines tabular export content.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// Labels returns the printable column headers.
func (d Dataset) Labels() []string {
	labels := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		labels[i] = col.Label
		if labels[i] == "" {
			labels[i] = col.Key
		}
	}
	return labels
}

// Record returns the row values in column order.
func (d Dataset) Record(row map[string]string) []string {
	record := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		record[i] = row[col.Key]
	}
	return record
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset requires at least one column")
	}
	return nil
}

// Section is one titled block of a rendered document.
type Section struct {
	Heading    string
	Paragraphs []string
	Table      *Dataset
}

// Document is the format-neutral shape rendered into PDF or DOCX.
type Document struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Sections    []Section
}

// Renderer turns a Document into file bytes.
type Renderer interface {
	RenderDocument(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}
