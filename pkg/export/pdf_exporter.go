package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfPageWidth  = 297.0 - 2*pdfMargin
	pdfLineHeight = 5.0
	pdfCellPad    = 2.0
	utf8Family    = "body"
)

// PDFExporter renders datasets as a landscape A4 table. Long cells wrap onto several lines.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter. fontPath optionally names a UTF-8 TrueType font,
// needed for text outside Latin-1 such as Japanese names; empty uses the core Arial font.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Render creates a PDF document with the dataset title and table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 12, pdfMargin)
	pdf.SetAutoPageBreak(false, 12)

	family := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if e.fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", e.fontPath)
		pdf.AddUTF8Font(utf8Family, "B", e.fontPath)
		family = utf8Family
		tr = func(s string) string { return s }
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font: %w", err)
	}

	widths := columnWidths(data.Columns)
	pdf.SetHeaderFunc(func() {
		if data.Title != "" {
			pdf.SetFont(family, "B", 12)
			pdf.CellFormat(0, 8, tr(data.Title), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
		pdf.SetFont(family, "B", 9)
		for i, title := range data.Titles() {
			pdf.CellFormat(widths[i], 7, tr(title), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(family, "", 8)
	})
	pdf.AddPage()

	measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	for _, row := range data.Rows {
		record := data.Record(row)
		cells := make([][]string, len(record))
		lines := 1
		for i, value := range record {
			cells[i] = wrap(value, widths[i]-pdfCellPad, measure)
			if len(cells[i]) > lines {
				lines = len(cells[i])
			}
		}
		rowHeight := float64(lines) * pdfLineHeight
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
		}

		x, y := pdfMargin, pdf.GetY()
		for i := range record {
			pdf.Rect(x, y, widths[i], rowHeight, "D")
			for n, line := range cells[i] {
				pdf.SetXY(x, y+float64(n)*pdfLineHeight)
				pdf.CellFormat(widths[i], pdfLineHeight, tr(line), "", 0, "L", false, 0, "")
			}
			x += widths[i]
		}
		pdf.SetXY(pdfMargin, y+rowHeight)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// wrap breaks text into lines no wider than width, preferring spaces and falling back to
// rune boundaries for scripts written without them.
func wrap(text string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(strings.TrimRight(para, "\r"))
		start, lastSpace := 0, -1
		for i := 0; i < len(runes); i++ {
			if runes[i] == ' ' {
				lastSpace = i
			}
			if i == start || measure(string(runes[start:i+1])) <= width {
				continue
			}
			cut := i
			if lastSpace > start {
				cut = lastSpace
			}
			lines = append(lines, strings.TrimRight(string(runes[start:cut]), " "))
			start = cut
			for start < len(runes) && runes[start] == ' ' {
				start++
			}
			lastSpace = -1
			i = start - 1
		}
		lines = append(lines, string(runes[start:]))
	}
	return lines
}

func columnWidths(columns []Column) []float64 {
	total := 0.0
	for _, col := range columns {
		total += weight(col)
	}
	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = pdfPageWidth * weight(col) / total
	}
	return widths
}

func weight(col Column) float64 {
	if col.Weight <= 0 {
		return 1
	}
	return col.Weight
}
