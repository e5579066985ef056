package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"sip-dashboard/domain"
)

// ReportService renders SIP projections as PDF documents.
type ReportService struct {
	sip    *SipService
	now    func() time.Time
	logger *zap.Logger
}

func NewReportService(sip *SipService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{sip: sip, now: time.Now, logger: logger}
}

// SipReport builds a one-page report with the comparison and the yearly schedule.
func (s *ReportService) SipReport(plan domain.SipPlan, standardRatePercent *float64) ([]byte, error) {
	comparison, err := s.sip.Compare(plan, standardRatePercent)
	if err != nil {
		return nil, err
	}
	schedule, err := s.sip.Schedule(plan)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SIP Projection", false)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SIP Projection")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.Cell(0, 5, "Generated "+s.now().Format("2006-01-02 15:04"))
	pdf.Ln(10)
	pdf.SetTextColor(0, 0, 0)

	rows := [][2]string{
		{"Monthly investment", FormatCurrency(plan.MonthlyContribution)},
		{"Investment period", fmt.Sprintf("%d years (%d months)", plan.Years, plan.TotalMonths())},
		{"Contribution timing", timingLabel(plan.Timing)},
		{"Total invested", FormatCurrency(comparison.Given.TotalInvested)},
		{"Future value at " + FormatPercent(comparison.StandardRatePercent) + " (standard)", FormatCurrency(comparison.Standard.FutureValue)},
		{"Future value at " + FormatPercent(comparison.GivenRatePercent) + " (given)", FormatCurrency(comparison.Given.FutureValue)},
		{"Difference", FormatCurrency(comparison.Difference)},
	}

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(110, 7, row[0], "B", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, row[1], "B", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 238, 246)
	pdf.CellFormat(30, 7, "Year", "1", 0, "C", true, 0, "")
	pdf.CellFormat(75, 7, "Total invested", "1", 0, "C", true, 0, "")
	pdf.CellFormat(75, 7, "Future value", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, point := range schedule {
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", point.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(75, 6, FormatCurrency(point.TotalInvested), "1", 0, "R", false, 0, "")
		pdf.CellFormat(75, 6, FormatCurrency(point.FutureValue), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("rendering sip report", zap.Error(err))
		return nil, fmt.Errorf("rendering sip report: %w", err)
	}
	return buf.Bytes(), nil
}

func timingLabel(t domain.ContributionTiming) string {
	if t == domain.OrdinaryAnnuity {
		return "End of month (ordinary annuity)"
	}
	return "Start of month (annuity due)"
}
