package http

import (
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"sip-dashboard/domain"
	"sip-dashboard/service"
)

type SipHandler struct {
	service *service.SipService
	reports *service.ReportService
	logger  *zap.Logger
}

func NewSipHandler(service *service.SipService, reports *service.ReportService, logger *zap.Logger) *SipHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SipHandler{service: service, reports: reports, logger: logger}
}

// sipRequest uses pointers so that omitted fields are reported instead of
// silently defaulting to zero.
type sipRequest struct {
	MonthlyContribution *float64                  `json:"monthly_contribution"`
	AnnualRatePercent   *float64                  `json:"annual_rate_percent"`
	Years               *int                      `json:"years"`
	Timing              domain.ContributionTiming `json:"timing"`
	StandardRatePercent *float64                  `json:"standard_rate_percent,omitempty"`
}

func (req sipRequest) plan() (domain.SipPlan, error) {
	switch {
	case req.MonthlyContribution == nil:
		return domain.SipPlan{}, domain.NewInvalidInput("monthly_contribution", "is required")
	case req.AnnualRatePercent == nil:
		return domain.SipPlan{}, domain.NewInvalidInput("annual_rate_percent", "is required")
	case req.Years == nil:
		return domain.SipPlan{}, domain.NewInvalidInput("years", "is required")
	}
	return domain.SipPlan{
		MonthlyContribution: *req.MonthlyContribution,
		AnnualRatePercent:   *req.AnnualRatePercent,
		Years:               *req.Years,
		Timing:              req.Timing,
	}, nil
}

type formattedResult struct {
	TotalInvested string `json:"total_invested"`
	FutureValue   string `json:"future_value"`
	Gain          string `json:"gain"`
}

type sipResponse struct {
	domain.SipResult
	Plan      domain.SipPlan  `json:"plan"`
	Formatted formattedResult `json:"formatted"`
}

type formattedComparison struct {
	TotalInvested       string `json:"total_invested"`
	GivenFutureValue    string `json:"given_future_value"`
	StandardFutureValue string `json:"standard_future_value"`
	Difference          string `json:"difference"`
}

type compareResponse struct {
	domain.SipComparison
	Plan      domain.SipPlan      `json:"plan"`
	Formatted formattedComparison `json:"formatted"`
}

type scheduleResponse struct {
	Plan     domain.SipPlan     `json:"plan"`
	Schedule []domain.YearPoint `json:"schedule"`
}

func (h *SipHandler) decodePlan(w http.ResponseWriter, r *http.Request) (sipRequest, domain.SipPlan, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return sipRequest{}, domain.SipPlan{}, false
	}

	var req sipRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return sipRequest{}, domain.SipPlan{}, false
	}

	plan, err := req.plan()
	if err != nil {
		writeError(w, h.logger, err)
		return sipRequest{}, domain.SipPlan{}, false
	}
	return req, plan, true
}

func (h *SipHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	_, plan, ok := h.decodePlan(w, r)
	if !ok {
		return
	}

	result, err := h.service.Calculate(plan)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, sipResponse{
		SipResult: result,
		Plan:      plan,
		Formatted: formattedResult{
			TotalInvested: service.FormatCurrency(result.TotalInvested),
			FutureValue:   service.FormatCurrency(result.FutureValue),
			Gain:          service.FormatCurrency(result.Gain()),
		},
	})
}

func (h *SipHandler) Compare(w http.ResponseWriter, r *http.Request) {
	req, plan, ok := h.decodePlan(w, r)
	if !ok {
		return
	}

	comparison, err := h.service.Compare(plan, req.StandardRatePercent)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, compareResponse{
		SipComparison: comparison,
		Plan:          plan,
		Formatted: formattedComparison{
			TotalInvested:       service.FormatCurrency(comparison.Given.TotalInvested),
			GivenFutureValue:    service.FormatCurrency(comparison.Given.FutureValue),
			StandardFutureValue: service.FormatCurrency(comparison.Standard.FutureValue),
			Difference:          service.FormatCurrency(comparison.Difference),
		},
	})
}

func (h *SipHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	_, plan, ok := h.decodePlan(w, r)
	if !ok {
		return
	}

	points, err := h.service.Schedule(plan)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, scheduleResponse{Plan: plan, Schedule: points})
}

// Report serves the projection as a PDF built from query parameters.
func (h *SipHandler) Report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plan, standard, err := planFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	data, err := h.reports.SipReport(plan, standard)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sip-projection.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("writing report", zap.Error(err))
	}
}

// planFromQuery reads monthly, rate, years, timing and the optional
// standard rate from form values.
func planFromQuery(q url.Values) (domain.SipPlan, *float64, error) {
	monthly, err := floatParam(q, "monthly", "monthly_contribution")
	if err != nil {
		return domain.SipPlan{}, nil, err
	}
	rate, err := floatParam(q, "rate", "annual_rate_percent")
	if err != nil {
		return domain.SipPlan{}, nil, err
	}

	yearsRaw := q.Get("years")
	if yearsRaw == "" {
		return domain.SipPlan{}, nil, domain.NewInvalidInput("years", "is required")
	}
	years, err := strconv.Atoi(yearsRaw)
	if err != nil {
		return domain.SipPlan{}, nil, domain.NewInvalidInput("years", "must be a whole number")
	}

	timing, err := domain.ParseContributionTiming(q.Get("timing"))
	if err != nil {
		return domain.SipPlan{}, nil, err
	}

	var standard *float64
	if q.Get("standard") != "" {
		v, err := floatParam(q, "standard", "standard_rate_percent")
		if err != nil {
			return domain.SipPlan{}, nil, err
		}
		standard = &v
	}

	return domain.SipPlan{
		MonthlyContribution: monthly,
		AnnualRatePercent:   rate,
		Years:               years,
		Timing:              timing,
	}, standard, nil
}

func floatParam(q url.Values, key, field string) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, domain.NewInvalidInput(field, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.NewInvalidInput(field, "%q is not a number", raw)
	}
	return v, nil
}
