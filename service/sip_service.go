package service

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"sip-dashboard/domain"
)

// Project computes the total contributed and the compounded future value
// of a monthly plan. Values are returned at full precision.
func Project(plan domain.SipPlan) (domain.SipResult, error) {
	if err := validatePlan(plan); err != nil {
		return domain.SipResult{}, err
	}

	rate := plan.MonthlyRate()
	months := float64(plan.TotalMonths())
	invested := plan.MonthlyContribution * months

	future := invested
	if rate != 0 {
		future = plan.MonthlyContribution * ((math.Pow(1+rate, months) - 1) / rate)
		if plan.Timing == domain.AnnuityDue {
			future *= 1 + rate
		}
	}

	return domain.SipResult{
		TotalInvested: invested,
		FutureValue:   future,
	}, nil
}

// Compare projects the same plan at its own rate and at a standard rate.
func Compare(plan domain.SipPlan, standardRatePercent float64) (domain.SipComparison, error) {
	given, err := Project(plan)
	if err != nil {
		return domain.SipComparison{}, err
	}

	standard, err := Project(plan.WithRate(standardRatePercent))
	if err != nil {
		var inputErr *domain.InvalidInputError
		if errors.As(err, &inputErr) && inputErr.Field == "annual_rate_percent" {
			inputErr.Field = "standard_rate_percent"
		}
		return domain.SipComparison{}, err
	}

	return domain.SipComparison{
		GivenRatePercent:    plan.AnnualRatePercent,
		StandardRatePercent: standardRatePercent,
		Given:               given,
		Standard:            standard,
		Difference:          given.FutureValue - standard.FutureValue,
	}, nil
}

// Schedule returns the projected value at the end of every plan year.
func Schedule(plan domain.SipPlan) ([]domain.YearPoint, error) {
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	points := make([]domain.YearPoint, 0, plan.Years)
	for year := 1; year <= plan.Years; year++ {
		partial := plan
		partial.Years = year
		result, err := Project(partial)
		if err != nil {
			return nil, err
		}
		points = append(points, domain.YearPoint{
			Year:          year,
			TotalInvested: result.TotalInvested,
			FutureValue:   result.FutureValue,
		})
	}
	return points, nil
}

func validatePlan(plan domain.SipPlan) error {
	switch {
	case math.IsNaN(plan.MonthlyContribution) || math.IsInf(plan.MonthlyContribution, 0):
		return domain.NewInvalidInput("monthly_contribution", "must be a finite number")
	case plan.MonthlyContribution < 0:
		return domain.NewInvalidInput("monthly_contribution", "must not be negative")
	case plan.MonthlyContribution > MaxMonthlyContribution:
		return domain.NewInvalidInput("monthly_contribution", "exceeds the maximum of %.2f", MaxMonthlyContribution)
	case math.IsNaN(plan.AnnualRatePercent) || math.IsInf(plan.AnnualRatePercent, 0):
		return domain.NewInvalidInput("annual_rate_percent", "must be a finite number")
	case plan.AnnualRatePercent < 0:
		return domain.NewInvalidInput("annual_rate_percent", "must not be negative")
	case plan.AnnualRatePercent > MaxAnnualRatePercent:
		return domain.NewInvalidInput("annual_rate_percent", "exceeds the maximum of %.2f%%", MaxAnnualRatePercent)
	case plan.Years < MinYears:
		return domain.NewInvalidInput("years", "must be at least %d", MinYears)
	case plan.Years > MaxYears:
		return domain.NewInvalidInput("years", "exceeds the maximum of %d", MaxYears)
	case plan.Timing != domain.AnnuityDue && plan.Timing != domain.OrdinaryAnnuity:
		return domain.NewInvalidInput("timing", "unknown timing %d", int(plan.Timing))
	}
	return nil
}

// SipService binds the projection engine to the configured baseline rate.
type SipService struct {
	standardRatePercent float64
	logger              *zap.Logger
}

// NewSipService creates a SipService. A negative standardRatePercent falls
// back to DefaultStandardRatePercent.
func NewSipService(standardRatePercent float64, logger *zap.Logger) *SipService {
	if standardRatePercent < 0 || math.IsNaN(standardRatePercent) {
		standardRatePercent = DefaultStandardRatePercent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SipService{standardRatePercent: standardRatePercent, logger: logger}
}

func (s *SipService) StandardRatePercent() float64 {
	return s.standardRatePercent
}

func (s *SipService) Calculate(plan domain.SipPlan) (domain.SipResult, error) {
	result, err := Project(plan)
	if err != nil {
		s.logger.Debug("rejected sip plan", zap.Error(err))
		return domain.SipResult{}, err
	}
	return result, nil
}

// Compare uses the configured standard rate when standardRatePercent is nil.
func (s *SipService) Compare(plan domain.SipPlan, standardRatePercent *float64) (domain.SipComparison, error) {
	standard := s.standardRatePercent
	if standardRatePercent != nil {
		standard = *standardRatePercent
	}

	comparison, err := Compare(plan, standard)
	if err != nil {
		s.logger.Debug("rejected sip comparison", zap.Error(err))
		return domain.SipComparison{}, err
	}
	return comparison, nil
}

func (s *SipService) Schedule(plan domain.SipPlan) ([]domain.YearPoint, error) {
	return Schedule(plan)
}
