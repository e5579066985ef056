package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sip-dashboard/domain"
	"sip-dashboard/service"
)

func newTestDashboard(history stubHistory, movers stubMovers) *DashboardHandler {
	sip := service.NewSipService(service.DefaultStandardRatePercent, nil)
	market := service.NewMarketService(history, movers, nil)
	return NewDashboardHandler(sip, market, nil)
}

func getDashboard(t *testing.T, handler *DashboardHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.Index(w, req)
	return w
}

func TestDashboard_EmptyPage(t *testing.T) {

	w := getDashboard(t, newTestDashboard(stubHistory{}, stubMovers{}), "/")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), `value="AAPL"`) {
		t.Errorf("expected default symbol AAPL in form")
	}
}

func TestDashboard_UnknownPath(t *testing.T) {

	w := getDashboard(t, newTestDashboard(stubHistory{}, stubMovers{}), "/favicon.ico")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDashboard_StockDataRequiresName(t *testing.T) {

	w := getDashboard(t, newTestDashboard(stubHistory{bars: sampleBars(10)}, stubMovers{}), "/?action=data&symbol=MSFT")

	if !strings.Contains(w.Body.String(), "Please enter your name.") {
		t.Errorf("expected name warning, got %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "<svg") {
		t.Errorf("expected no charts without a name")
	}
}

func TestDashboard_StockData(t *testing.T) {

	w := getDashboard(t, newTestDashboard(stubHistory{bars: sampleBars(10)}, stubMovers{}), "/?action=data&name=Ana&symbol=msft")

	body := w.Body.String()
	if !strings.Contains(body, "Hi, Ana! Here&#39;s the stock data:") {
		t.Errorf("expected greeting, got %s", body)
	}
	if !strings.Contains(body, "Stock Data for MSFT") {
		t.Errorf("expected stock data heading")
	}
	if got := strings.Count(body, "<svg"); got != 4 {
		t.Errorf("expected 4 charts, got %d", got)
	}
	// newest bar first
	if !strings.Contains(body, "<td>2024-01-10</td>") {
		t.Errorf("expected latest bar in preview")
	}
	if strings.Contains(body, "<td>2024-01-05</td>") {
		t.Errorf("expected preview limited to %d rows", service.DashboardPreviewRows)
	}
}

func TestDashboard_StockDataFailure(t *testing.T) {

	history := stubHistory{err: fmt.Errorf("lookup: %w", domain.ErrSymbolNotFound)}
	w := getDashboard(t, newTestDashboard(history, stubMovers{}), "/?action=data&name=Ana&symbol=NOPE")

	if !strings.Contains(w.Body.String(), "Failed to retrieve data. Please check the stock symbol and API key.") {
		t.Errorf("expected failure message, got %s", w.Body.String())
	}
}

func TestDashboard_SipComparison(t *testing.T) {

	w := getDashboard(t, newTestDashboard(stubHistory{}, stubMovers{}), "/?action=sip&monthly=100&rate=8&years=10&timing=ordinary")

	body := w.Body.String()
	for _, want := range []string{
		"$12,000.00",
		"Standard Rate of 8.00%",
		"$18,294.60",
		"/sip/report.pdf?",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestDashboard_SipInvalidInput(t *testing.T) {

	w := getDashboard(t, newTestDashboard(stubHistory{}, stubMovers{}), "/?action=sip&monthly=100&rate=8&years=0")

	if !strings.Contains(w.Body.String(), "invalid years") {
		t.Errorf("expected years validation message, got %s", w.Body.String())
	}
}

func TestDashboard_Momentum(t *testing.T) {

	movers := stubMovers{movers: []domain.Mover{
		{Symbol: "ABCD", Price: 1.25, ChangeAmount: 0.5, ChangePercentage: "66.6667%", Volume: 120000},
	}}
	w := getDashboard(t, newTestDashboard(stubHistory{}, movers), "/?action=momentum")

	body := w.Body.String()
	if !strings.Contains(body, "<td>ABCD</td>") || !strings.Contains(body, "66.6667%") {
		t.Errorf("expected mover row, got %s", body)
	}
}

func TestDashboard_MomentumFailure(t *testing.T) {

	movers := stubMovers{err: domain.ErrNotConfigured}
	w := getDashboard(t, newTestDashboard(stubHistory{}, movers), "/?action=momentum")

	if !strings.Contains(w.Body.String(), "Failed to fetch high momentum stocks. Please check your API key.") {
		t.Errorf("expected momentum failure message")
	}
}
