package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/fumiama/go-docx"
)

// DOCXExporter renders documents as Word files.
type DOCXExporter struct{}

// NewDOCXExporter constructs a DOCX exporter.
func NewDOCXExporter() *DOCXExporter {
	return &DOCXExporter{}
}

// ContentType implements Renderer.
func (e *DOCXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Extension implements Renderer.
func (e *DOCXExporter) Extension() string { return "docx" }

// RenderDocument lays out the title block, sections and tables on A4 pages.
func (e *DOCXExporter) RenderDocument(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("docx requires a title")
	}
	w := docx.New().WithDefaultTheme().WithA4Page()

	addParagraph(w, doc.Title, 36, true, "center")
	if doc.Subtitle != "" {
		addParagraph(w, doc.Subtitle, 24, false, "center")
	}
	for _, section := range doc.Sections {
		if section.Heading != "" {
			addParagraph(w, section.Heading, 28, true, "")
		}
		for _, p := range section.Paragraphs {
			addParagraph(w, p, 22, false, "both")
		}
		if section.Table != nil && len(section.Table.Columns) > 0 {
			addTable(w, *section.Table)
		}
	}

	buf := &bytes.Buffer{}
	if _, err := w.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

// sizes are in half-points
func addParagraph(w *docx.Docx, text string, size int, bold bool, align string) {
	p := w.AddParagraph()
	if align != "" {
		p.Justification(align)
	}
	run := p.AddText(text).Size(strconv.Itoa(size))
	if bold {
		run.Bold()
	}
}

func addTable(w *docx.Docx, data Dataset) {
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Labels())
	for _, row := range data.Rows {
		records = append(records, data.Record(row))
	}

	tbl := w.AddTable(len(records), len(data.Columns), 0, nil)
	for i, row := range tbl.TableRows {
		for j, cell := range row.TableCells {
			run := cell.AddParagraph().AddText(records[i][j]).Size("18")
			if i == 0 {
				run.Bold()
			}
		}
	}
	// Word requires a paragraph between consecutive tables.
	w.AddParagraph()
}
