package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sip-dashboard/domain"
	"sip-dashboard/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"percent": service.FormatPercent,
	"date":    func(t time.Time) string { return t.Format("2006-01-02") },
	"price":   func(v float64) string { return strings.Replace(service.FormatCurrency(v), "$", "", 1) },
}).ParseFS(templateFS, "templates/dashboard.html"))

type DashboardHandler struct {
	sip    *service.SipService
	market *service.MarketService
	logger *zap.Logger
}

func NewDashboardHandler(sip *service.SipService, market *service.MarketService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{sip: sip, market: market, logger: logger}
}

type sipForm struct {
	Monthly  string
	Rate     string
	Years    string
	Timing   string
	Standard float64
}

type sipView struct {
	TotalInvested string
	StandardRate  float64
	StandardValue string
	GivenRate     float64
	GivenValue    string
	ReportURL     template.URL
}

type stockView struct {
	Symbol  string
	Preview []domain.DailyBar
	Charts  []chart
}

type dashboardView struct {
	Name   string
	Symbol string

	Greeting   string
	Warning    string
	StockError string
	Stock      *stockView

	Form     sipForm
	Sip      *sipView
	SipError string

	Momentum      bool
	Movers        []domain.Mover
	MomentumError string
}

func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	view := dashboardView{
		Name:   strings.TrimSpace(q.Get("name")),
		Symbol: strings.TrimSpace(q.Get("symbol")),
		Form: sipForm{
			Monthly:  valueOr(q.Get("monthly"), "100"),
			Rate:     valueOr(q.Get("rate"), "8"),
			Years:    valueOr(q.Get("years"), "10"),
			Timing:   q.Get("timing"),
			Standard: h.sip.StandardRatePercent(),
		},
	}
	if view.Symbol == "" {
		view.Symbol = "AAPL"
	}

	switch q.Get("action") {
	case "data":
		h.stockSection(r, &view)
	case "sip":
		h.sipSection(r, &view)
	case "momentum":
		h.momentumSection(r, &view)
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		h.logger.Error("rendering dashboard", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("writing dashboard", zap.Error(err))
	}
}

func (h *DashboardHandler) stockSection(r *http.Request, view *dashboardView) {
	if view.Name == "" {
		view.Warning = "Please enter your name."
		return
	}
	view.Greeting = "Hi, " + view.Name + "! Here's the stock data:"

	history, err := h.market.PriceHistory(r.Context(), view.Symbol)
	if err != nil {
		view.StockError = stockErrorMessage(err)
		return
	}

	view.Stock = &stockView{
		Symbol:  history.Symbol,
		Preview: history.Latest(service.DashboardPreviewRows),
		Charts:  priceCharts(history),
	}
}

func stockErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, domain.ErrNotConfigured):
		return "Market data is not configured. Set ALPHAVANTAGE_API_KEY and restart."
	}
	return "Failed to retrieve data. Please check the stock symbol and API key."
}

func priceCharts(history domain.PriceHistory) []chart {
	n := len(history.Bars)
	dates := make([]time.Time, n)
	closes := make([]float64, n)
	opens := make([]float64, n)
	volumes := make([]float64, n)
	for i, bar := range history.Bars {
		dates[i] = bar.Date
		closes[i] = bar.Close
		opens[i] = bar.Open
		volumes[i] = bar.Volume
	}

	symbol := history.Symbol
	return []chart{
		lineChart("Closing Price Trend of "+symbol, dates,
			chartSeries{Label: "Close Price", Color: "#1f5fbf", Values: valuesOf(closes)}),
		barChart("Volume Traded for "+symbol, dates, volumes, "#2e8b57"),
		lineChart("Moving Averages for "+symbol, dates,
			chartSeries{Label: "Close Price", Color: "#1f5fbf", Values: valuesOf(closes)},
			chartSeries{Label: "50-Day MA", Color: "#f28c28", Values: history.MA50},
			chartSeries{Label: "200-Day MA", Color: "#d62728", Values: history.MA200}),
		lineChart("Opening Price Trend of "+symbol, dates,
			chartSeries{Label: "Open Price", Color: "#7b3fa0", Values: valuesOf(opens)}),
	}
}

func (h *DashboardHandler) sipSection(r *http.Request, view *dashboardView) {
	plan, standard, err := planFromQuery(r.URL.Query())
	if err != nil {
		view.SipError = err.Error()
		return
	}

	comparison, err := h.sip.Compare(plan, standard)
	if err != nil {
		view.SipError = err.Error()
		return
	}

	report := r.URL.Query()
	report.Del("action")
	report.Del("name")
	report.Del("symbol")

	view.Sip = &sipView{
		TotalInvested: service.FormatCurrency(comparison.Given.TotalInvested),
		StandardRate:  comparison.StandardRatePercent,
		StandardValue: service.FormatCurrency(comparison.Standard.FutureValue),
		GivenRate:     comparison.GivenRatePercent,
		GivenValue:    service.FormatCurrency(comparison.Given.FutureValue),
		ReportURL:     template.URL("/sip/report.pdf?" + report.Encode()),
	}
}

func (h *DashboardHandler) momentumSection(r *http.Request, view *dashboardView) {
	view.Momentum = true

	movers, err := h.market.TopGainers(r.Context())
	if err != nil {
		view.MomentumError = "Failed to fetch high momentum stocks. Please check your API key."
		return
	}
	view.Movers = movers
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
