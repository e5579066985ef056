package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"

	"sip-dashboard/domain"
)

const (
	// CompactBars matches the size of an Alpha Vantage compact series.
	CompactBars = 100

	// alpacaLookback covers CompactBars trading days with weekends and holidays.
	alpacaLookback = 160 * 24 * time.Hour
)

// barsGetter is the part of *marketdata.Client used here.
type barsGetter interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaHistoryClient reads daily bars from the Alpaca market data API.
type AlpacaHistoryClient struct {
	client barsGetter
	now    func() time.Time
	logger *zap.Logger
}

func NewAlpacaHistoryClient(apiKey, apiSecret string, logger *zap.Logger) *AlpacaHistoryClient {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
	return newAlpacaHistoryClient(client, time.Now, logger)
}

func newAlpacaHistoryClient(client barsGetter, now func() time.Time, logger *zap.Logger) *AlpacaHistoryClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlpacaHistoryClient{client: client, now: now, logger: logger}
}

// DailySeries returns up to CompactBars daily bars for symbol, oldest first.
func (c *AlpacaHistoryClient) DailySeries(ctx context.Context, symbol string) ([]domain.DailyBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := c.now().UTC()
	bars, err := c.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     end.Add(-alpacaLookback),
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: alpaca bars for %s: %v", domain.ErrUpstream, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
	}

	if len(bars) > CompactBars {
		bars = bars[len(bars)-CompactBars:]
	}

	out := make([]domain.DailyBar, 0, len(bars))
	for _, bar := range bars {
		ts := bar.Timestamp.UTC()
		out = append(out, domain.DailyBar{
			Date:   time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: float64(bar.Volume),
		})
	}

	c.logger.Debug("alpaca bars", zap.String("symbol", symbol), zap.Int("bars", len(out)))
	return out, nil
}
