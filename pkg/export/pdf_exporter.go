package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfContentWidth = 190.0

// PDFExporter renders documents with gofpdf using the core Helvetica font.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return "pdf" }

// RenderDocument lays out the title page header followed by every section.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("pdf requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(doc.Title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, tr(doc.Title), "", "C", false)
	if doc.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, tr(doc.Subtitle), "", "C", false)
	}
	if !doc.GeneratedAt.IsZero() {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, doc.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		if section.Heading != "" {
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 8, tr(section.Heading), "B", "L", false)
			pdf.Ln(2)
		}
		pdf.SetFont("Helvetica", "", 10)
		for _, p := range section.Paragraphs {
			pdf.MultiCell(0, 5, tr(p), "", "J", false)
			pdf.Ln(2)
		}
		if section.Table != nil && len(section.Table.Columns) > 0 {
			writePDFTable(pdf, tr, *section.Table)
		}
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writePDFTable(pdf *gofpdf.Fpdf, tr func(string) string, data Dataset) {
	colWidth := pdfContentWidth / float64(len(data.Columns))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(226, 239, 218)
	for _, label := range data.Labels() {
		pdf.CellFormat(colWidth, 7, tr(label), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range data.Rows {
		for _, value := range data.Record(row) {
			pdf.CellFormat(colWidth, 6, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
