package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sip-dashboard/domain"
)

type HistoryProvider interface {
	DailySeries(ctx context.Context, symbol string) ([]domain.DailyBar, error)
}

type MoversProvider interface {
	TopGainers(ctx context.Context) ([]domain.Mover, error)
}

const maxSymbolLength = 12

type MarketService struct {
	history HistoryProvider
	movers  MoversProvider
	logger  *zap.Logger
}

// NewMarketService creates a MarketService. A nil movers provider makes
// TopGainers report domain.ErrProviderUnsupported.
func NewMarketService(history HistoryProvider, movers MoversProvider, logger *zap.Logger) *MarketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketService{history: history, movers: movers, logger: logger}
}

// PriceHistory fetches the recent daily series and attaches moving averages.
func (s *MarketService) PriceHistory(ctx context.Context, symbol string) (domain.PriceHistory, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return domain.PriceHistory{}, err
	}

	bars, err := s.history.DailySeries(ctx, symbol)
	if err != nil {
		s.logger.Warn("price history fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return domain.PriceHistory{}, err
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return domain.PriceHistory{
		Symbol: symbol,
		Bars:   bars,
		MA50:   MovingAverage(closes, MovingAverageShort),
		MA200:  MovingAverage(closes, MovingAverageLong),
	}, nil
}

func (s *MarketService) TopGainers(ctx context.Context) ([]domain.Mover, error) {
	if s.movers == nil {
		return nil, domain.ErrProviderUnsupported
	}

	movers, err := s.movers.TopGainers(ctx)
	if err != nil {
		s.logger.Warn("top gainers fetch failed", zap.Error(err))
		return nil, err
	}
	return movers, nil
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", domain.NewInvalidInput("symbol", "must not be empty")
	}
	if len(symbol) > maxSymbolLength {
		return "", domain.NewInvalidInput("symbol", "must be at most %d characters", maxSymbolLength)
	}
	for _, r := range symbol {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '-') {
			return "", domain.NewInvalidInput("symbol", "contains invalid character %q", r)
		}
	}
	return symbol, nil
}
