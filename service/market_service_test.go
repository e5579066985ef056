package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"sip-dashboard/domain"
)

type MockHistoryProvider struct {
	Bars   []domain.DailyBar
	Err    error
	Symbol string
}

func (m *MockHistoryProvider) DailySeries(ctx context.Context, symbol string) ([]domain.DailyBar, error) {
	m.Symbol = symbol
	return m.Bars, m.Err
}

type MockMoversProvider struct {
	Movers []domain.Mover
	Err    error
}

func (m *MockMoversProvider) TopGainers(ctx context.Context) ([]domain.Mover, error) {
	return m.Movers, m.Err
}

func makeBars(n int) []domain.DailyBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.DailyBar, n)
	for i := range bars {
		bars[i] = domain.DailyBar{Date: start.AddDate(0, 0, i), Close: float64(i + 1), Open: float64(i)}
	}
	return bars
}

func TestPriceHistory_MovingAverages(t *testing.T) {

	history := &MockHistoryProvider{Bars: makeBars(100)}
	svc := NewMarketService(history, nil, zap.NewNop())

	result, err := svc.PriceHistory(context.Background(), "  aapl ")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if history.Symbol != "AAPL" || result.Symbol != "AAPL" {
		t.Errorf("expected normalized symbol, got %q / %q", history.Symbol, result.Symbol)
	}

	if len(result.MA50) != 100 || len(result.MA200) != 100 {
		t.Fatalf("moving averages must align with bars")
	}

	if result.MA50[48] != nil || result.MA50[49] == nil || *result.MA50[49] != 25.5 {
		t.Errorf("unexpected MA50 around the first full window")
	}

	for i, v := range result.MA200 {
		if v != nil {
			t.Fatalf("MA200 must be empty for 100 bars, index %d has %v", i, *v)
		}
	}
}

func TestPriceHistory_InvalidSymbol(t *testing.T) {

	history := &MockHistoryProvider{}
	svc := NewMarketService(history, nil, nil)

	for _, symbol := range []string{"", "   ", "AA PL", "TOOLONGSYMBOL1"} {
		_, err := svc.PriceHistory(context.Background(), symbol)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%q: expected invalid input, got %v", symbol, err)
		}
	}

	if history.Symbol != "" {
		t.Errorf("provider should not be called for invalid symbols")
	}
}

func TestPriceHistory_ProviderError(t *testing.T) {

	svc := NewMarketService(&MockHistoryProvider{Err: domain.ErrSymbolNotFound}, nil, nil)

	_, err := svc.PriceHistory(context.Background(), "NOPE")

	if !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestTopGainers(t *testing.T) {

	movers := &MockMoversProvider{Movers: []domain.Mover{{Symbol: "ABCD", Price: 2.48}}}
	svc := NewMarketService(&MockHistoryProvider{}, movers, nil)

	result, err := svc.TopGainers(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].Symbol != "ABCD" {
		t.Errorf("unexpected movers %+v", result)
	}

	svc = NewMarketService(&MockHistoryProvider{}, nil, nil)
	if _, err := svc.TopGainers(context.Background()); !errors.Is(err, domain.ErrProviderUnsupported) {
		t.Errorf("expected ErrProviderUnsupported, got %v", err)
	}
}
