package deadline

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WriteMemoPDF renders a stored calculation as an A4 memo suitable for
// filing in the case record.
func WriteMemoPDF(w io.Writer, rec CalculationRecord) error {
	res := rec.Result

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Deadline Calculation Memo")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Matter: %s", rec.MatterID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Recorded: %s", rec.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Expedition date: %s", res.ExpeditionDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Reading date: %s", res.ReadingDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Start of count: %s", res.StartDate.Format("2006-01-02")))
	pdf.Ln(7)

	mode := "calendar days"
	if res.CountedInBusinessDays {
		mode = "business days"
	}
	pdf.Cell(0, 8, fmt.Sprintf("Days counted: %d of %d base (%s)", res.EffectiveDays, res.BaseDays, mode))
	pdf.Ln(7)
	if res.DoublingApplied {
		pdf.Cell(0, 8, "Statutory doubling for the public defender applied.")
		pdf.Ln(7)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Due date: %s", res.DueDate.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)

	if len(res.HolidaysEncountered) > 0 {
		pdf.Cell(0, 8, "Holidays and suspensions in the counting window:")
		pdf.Ln(7)
		for _, hit := range res.HolidaysEncountered {
			pdf.Cell(0, 7, fmt.Sprintf("  - %s  %s", hit.Date.Format("2006-01-02"), hit.Name))
			pdf.Ln(6)
		}
		pdf.Ln(3)
	}

	if len(res.Notes) > 0 {
		pdf.Cell(0, 8, "Notes:")
		pdf.Ln(7)
		for _, note := range res.Notes {
			pdf.MultiCell(0, 6, "  - "+note, "", "L", false)
		}
	}

	return pdf.Output(w)
}
