package billing

import (
	"bytes"
	"fmt"

	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer lays out one bill as a printable A4 document. The header
// and footer text are fixed per deployment.
type PDFRenderer struct {
	company string
	footer  string
}

// NewPDFRenderer builds a renderer from the billing configuration.
func NewPDFRenderer(cfg config.BillingConfig) *PDFRenderer {
	return &PDFRenderer{company: cfg.CompanyName, footer: cfg.FooterNote}
}

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 26, "L"},
	{"Session", 24, "L"},
	{"Milk Type", 34, "L"},
	{"Qty (L)", 22, "R"},
	{"Fat", 18, "R"},
	{"Rate", 28, "R"},
	{"Total", 38, "R"},
}

// Render produces the PDF bytes for one bill detail.
func (r *PDFRenderer) Render(detail *BillDetail) ([]byte, error) {
	if detail == nil {
		return nil, fmt.Errorf("nil bill detail")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 10, r.footer, "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, r.company, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Bill #%d  -  %s", detail.Bill.ID, detail.Bill.CustomerName), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Period: %s to %s", detail.Bill.PeriodStart, detail.Bill.PeriodEnd), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, day := range detail.Statement.Days {
		for _, txn := range day.Transactions {
			fat := "-"
			if txn.Fat != nil {
				fat = txn.Fat.String()
			}
			cells := []string{
				txn.Date,
				txn.Session.String(),
				txn.MilkTypeName,
				txn.Qty.StringFixed(2),
				fat,
				txn.Rate.StringFixed(2),
				txn.Total.StringFixed(2),
			}
			for i, col := range pdfColumns {
				pdf.CellFormat(col.width, 7, cells[i], "1", 0, col.align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	pdf.SetFont("Helvetica", "B", 11)
	labelWidth := 0.0
	for _, col := range pdfColumns[:len(pdfColumns)-1] {
		labelWidth += col.width
	}
	pdf.CellFormat(labelWidth, 9, "Grand Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(pdfColumns[len(pdfColumns)-1].width, 9, detail.Bill.TotalAmount.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
