package domain

import (
	"fmt"
	"strings"
)

// ContributionTiming selects when each monthly contribution starts earning.
type ContributionTiming int

const (
	// AnnuityDue credits a full month of growth to every contribution,
	// including the month it is deposited in.
	AnnuityDue ContributionTiming = iota
	// OrdinaryAnnuity deposits at the end of each month.
	OrdinaryAnnuity
)

func (t ContributionTiming) String() string {
	switch t {
	case AnnuityDue:
		return "due"
	case OrdinaryAnnuity:
		return "ordinary"
	}
	return fmt.Sprintf("ContributionTiming(%d)", int(t))
}

// ParseContributionTiming accepts "", "due" and "ordinary".
func ParseContributionTiming(s string) (ContributionTiming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "due", "annuity_due":
		return AnnuityDue, nil
	case "ordinary", "ordinary_annuity":
		return OrdinaryAnnuity, nil
	}
	return AnnuityDue, &InvalidInputError{Field: "timing", Reason: fmt.Sprintf("unknown timing %q", s)}
}

func (t ContributionTiming) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ContributionTiming) UnmarshalText(text []byte) error {
	parsed, err := ParseContributionTiming(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type SipPlan struct {
	MonthlyContribution float64            `json:"monthly_contribution"`
	AnnualRatePercent   float64            `json:"annual_rate_percent"`
	Years               int                `json:"years"`
	Timing              ContributionTiming `json:"timing"`
}

func (p SipPlan) MonthlyRate() float64 {
	return p.AnnualRatePercent / 100 / 12
}

func (p SipPlan) TotalMonths() int {
	return p.Years * 12
}

// WithRate returns a copy of the plan at a different annual rate.
func (p SipPlan) WithRate(annualRatePercent float64) SipPlan {
	p.AnnualRatePercent = annualRatePercent
	return p
}

type SipResult struct {
	TotalInvested float64 `json:"total_invested"`
	FutureValue   float64 `json:"future_value"`
}

// Gain is the compounded growth above the contributed principal.
func (r SipResult) Gain() float64 {
	return r.FutureValue - r.TotalInvested
}

type SipComparison struct {
	GivenRatePercent    float64   `json:"given_rate_percent"`
	StandardRatePercent float64   `json:"standard_rate_percent"`
	Given               SipResult `json:"given"`
	Standard            SipResult `json:"standard"`
	Difference          float64   `json:"difference"`
}

type YearPoint struct {
	Year          int     `json:"year"`
	TotalInvested float64 `json:"total_invested"`
	FutureValue   float64 `json:"future_value"`
}
