package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Usable width of an A4 portrait page at 10mm side margins.
const pdfBodyWidth = 190.0

const pdfLineHeight = 4.0

// PDFExporter renders review log tables as a paged PDF document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF review log: a title line followed by a table whose
// column widths follow the column weights. Long values, teacher comments in
// particular, wrap onto extra lines instead of being clipped.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, table.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	widths := columnWidths(table.Columns)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, col := range table.Columns {
		pdf.CellFormat(widths[i], 8, col.Name, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()

	for _, row := range table.Rows {
		height := rowHeight(pdf, widths, row)
		if pdf.GetY()+height > pageHeight-bottomMargin {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		for i, value := range row {
			if i >= len(widths) {
				break
			}
			pdf.Rect(x, y, widths[i], height, "D")
			pdf.SetXY(x, y)
			pdf.MultiCell(widths[i], pdfLineHeight, value, "", "L", false)
			x += widths[i]
		}
		pdf.SetY(y + height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, col := range cols {
		if col.Weight > 0 {
			total += col.Weight
		} else {
			total++
		}
	}

	widths := make([]float64, len(cols))
	for i, col := range cols {
		weight := col.Weight
		if weight <= 0 {
			weight = 1
		}
		widths[i] = pdfBodyWidth * weight / total
	}
	return widths
}

func rowHeight(pdf *gofpdf.Fpdf, widths []float64, row []string) float64 {
	lines := 1
	for i, value := range row {
		if i >= len(widths) {
			break
		}
		if n := len(pdf.SplitText(value, widths[i])); n > lines {
			lines = n
		}
	}
	return float64(lines) * pdfLineHeight
}
