package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth    = 190.0
	pdfHeaderHeight = 8.0
	pdfRowHeight    = 7.0
	pdfBottomMargin = 15.0
)

// PDFExporter renders datasets into a tabular PDF.
type PDFExporter struct {
	orientation string
}

// NewPDFExporter constructs a portrait A4 PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{orientation: "P"}
}

// Landscape returns an exporter laying tables out on landscape pages, used for wide datasets.
func (e *PDFExporter) Landscape() *PDFExporter {
	return &PDFExporter{orientation: "L"}
}

// Render creates a PDF with a title line followed by the table. gofpdf breaks pages on its own;
// the header row is drawn again at the top of every continuation page.
//
// Text is drawn with the core Arial font, which only covers Windows-1252. Characters outside it,
// such as CJK or Cyrillic names, are printed as "?". Use the CSV or XLSX export for those.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New(e.orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, pdfBottomMargin)

	width := pdfPageWidth
	if e.orientation == "L" {
		width = 277.0
	}
	colWidth := width / float64(len(data.Headers))
	cp1252 := pdf.UnicodeTranslatorFromDescriptor("")
	tr := func(text string) string { return cp1252(toCP1252(text)) }

	drawHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, pdfHeaderHeight, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	tableStarted := false
	pdf.SetHeaderFunc(func() {
		if tableStarted {
			drawHeader()
		}
	})

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	drawHeader()
	tableStarted = true

	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, pdfRowHeight, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// cp1252Extras are the runes Windows-1252 places in 0x80..0x9F.
var cp1252Extras = map[rune]struct{}{
	'€': {}, '‚': {}, 'ƒ': {}, '„': {}, '…': {}, '†': {}, '‡': {}, 'ˆ': {}, '‰': {}, 'Š': {},
	'‹': {}, 'Œ': {}, 'Ž': {}, '‘': {}, '’': {}, '“': {}, '”': {}, '•': {}, '–': {}, '—': {},
	'˜': {}, '™': {}, 'š': {}, '›': {}, 'œ': {}, 'ž': {}, 'Ÿ': {},
}

// toCP1252 replaces every rune the core fonts cannot draw with '?'.
func toCP1252(text string) string {
	out := []rune(text)
	for i, r := range out {
		if r < 0x80 || (r >= 0xA0 && r <= 0xFF) {
			continue
		}
		if _, ok := cp1252Extras[r]; !ok {
			out[i] = '?'
		}
	}
	return string(out)
}
