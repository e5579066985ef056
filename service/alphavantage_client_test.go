package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"sip-dashboard/domain"
)

const dailyFixture = `{
	"Meta Data": {"2. Symbol": "IBM"},
	"Time Series (Daily)": {
		"2024-03-05": {"1. open": "10.0", "2. high": "12.5", "3. low": "9.5", "4. close": "12.0", "5. volume": "1500"},
		"2024-03-01": {"1. open": "8.0", "2. high": "9.0", "3. low": "7.5", "4. close": "8.5", "5. volume": "1000"},
		"2024-03-04": {"1. open": "8.5", "2. high": "10.5", "3. low": "8.0", "4. close": "10.0", "5. volume": "1200"}
	}
}`

const gainersFixture = `{
	"last_updated": "2024-03-05 16:15:59 US/Eastern",
	"top_gainers": [
		{"ticker": "ABCD", "price": "2.48", "change_amount": "1.13", "change_percentage": "83.7037%", "volume": "12345"},
		{"ticker": "WXYZ", "price": "0.33", "change_amount": "0.12", "change_percentage": "57.1429%", "volume": "987654"}
	]
}`

func newTestAlphaVantage(t *testing.T, handler http.HandlerFunc) *AlphaVantageClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAlphaVantageClient("demo", server.URL, 5*time.Second, zaptest.NewLogger(t))
}

func TestAlphaVantage_DailySeries(t *testing.T) {

	client := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "TIME_SERIES_DAILY" || q.Get("symbol") != "IBM" ||
			q.Get("outputsize") != "compact" || q.Get("apikey") != "demo" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(dailyFixture))
	})

	bars, err := client.DailySeries(context.Background(), "IBM")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}

	if !bars[0].Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected bars sorted ascending, first is %v", bars[0].Date)
	}

	last := bars[2]
	if last.Open != 10 || last.High != 12.5 || last.Low != 9.5 || last.Close != 12 || last.Volume != 1500 {
		t.Errorf("unexpected last bar %+v", last)
	}
}

func TestAlphaVantage_DailySeries_UnknownSymbol(t *testing.T) {

	client := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	})

	_, err := client.DailySeries(context.Background(), "NOPE")

	if !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestAlphaVantage_DailySeries_Throttled(t *testing.T) {

	client := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})

	_, err := client.DailySeries(context.Background(), "IBM")

	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestAlphaVantage_BadStatus(t *testing.T) {

	client := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.TopGainers(context.Background())

	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestAlphaVantage_MalformedNumber(t *testing.T) {

	client := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)": {"2024-03-01": {"1. open": "x", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"}}}`))
	})

	_, err := client.DailySeries(context.Background(), "IBM")

	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestAlphaVantage_TopGainers(t *testing.T) {

	client := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") != "TOP_GAINERS_LOSERS" {
			t.Errorf("unexpected function %q", r.URL.Query().Get("function"))
		}
		w.Write([]byte(gainersFixture))
	})

	movers, err := client.TopGainers(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(movers) != 2 {
		t.Fatalf("expected 2 movers, got %d", len(movers))
	}

	first := movers[0]
	if first.Symbol != "ABCD" || first.Price != 2.48 || first.ChangeAmount != 1.13 ||
		first.ChangePercentage != "83.7037%" || first.Volume != 12345 {
		t.Errorf("unexpected mover %+v", first)
	}
}

func TestAlphaVantage_TopGainers_Missing(t *testing.T) {

	client := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Information": "premium endpoint"}`))
	})

	_, err := client.TopGainers(context.Background())

	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestAlphaVantage_NoAPIKey(t *testing.T) {

	client := NewAlphaVantageClient("", "http://127.0.0.1:1", time.Second, nil)

	if client.Enabled() {
		t.Errorf("expected client without key to be disabled")
	}

	_, err := client.DailySeries(context.Background(), "IBM")

	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
