package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sip-dashboard/domain"
)

const (
	DefaultAlphaVantageURL = "https://www.alphavantage.co/query"
	alphaVantageDateLayout = "2006-01-02"
	maxErrorBodyBytes      = 512
)

// AlphaVantageClient reads daily series and top gainers from Alpha Vantage.
type AlphaVantageClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

type timeSeriesDailyResponse struct {
	MetaData   map[string]string               `json:"Meta Data"`
	TimeSeries map[string]timeSeriesDailyEntry `json:"Time Series (Daily)"`
	upstreamMessages
}

type timeSeriesDailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type topMoversResponse struct {
	LastUpdated string          `json:"last_updated"`
	TopGainers  []topMoverEntry `json:"top_gainers"`
	upstreamMessages
}

type topMoverEntry struct {
	Ticker           string `json:"ticker"`
	Price            string `json:"price"`
	ChangeAmount     string `json:"change_amount"`
	ChangePercentage string `json:"change_percentage"`
	Volume           string `json:"volume"`
}

// upstreamMessages are the fields Alpha Vantage returns instead of data
// when a request is rejected or throttled.
type upstreamMessages struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (m upstreamMessages) message() string {
	for _, s := range []string{m.ErrorMessage, m.Note, m.Information} {
		if s != "" {
			return s
		}
	}
	return ""
}

func NewAlphaVantageClient(apiKey, apiURL string, timeout time.Duration, logger *zap.Logger) *AlphaVantageClient {
	if apiURL == "" {
		apiURL = DefaultAlphaVantageURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AlphaVantageClient{
		apiKey: apiKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *AlphaVantageClient) Enabled() bool {
	return c.apiKey != ""
}

// DailySeries returns the compact daily series for symbol, oldest first.
func (c *AlphaVantageClient) DailySeries(ctx context.Context, symbol string) ([]domain.DailyBar, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "compact")

	var resp timeSeriesDailyResponse
	if err := c.query(ctx, params, &resp); err != nil {
		return nil, err
	}

	if resp.TimeSeries == nil {
		if msg := resp.message(); msg != "" && resp.ErrorMessage == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
	}

	bars := make([]domain.DailyBar, 0, len(resp.TimeSeries))
	for day, entry := range resp.TimeSeries {
		bar, err := entry.toBar(day)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, symbol, day, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return bars, nil
}

// TopGainers returns the current top gainers list.
func (c *AlphaVantageClient) TopGainers(ctx context.Context) ([]domain.Mover, error) {
	params := url.Values{}
	params.Set("function", "TOP_GAINERS_LOSERS")

	var resp topMoversResponse
	if err := c.query(ctx, params, &resp); err != nil {
		return nil, err
	}

	if resp.TopGainers == nil {
		msg := resp.message()
		if msg == "" {
			msg = "response has no top_gainers"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
	}

	movers := make([]domain.Mover, 0, len(resp.TopGainers))
	for _, entry := range resp.TopGainers {
		mover, err := entry.toMover()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, entry.Ticker, err)
		}
		movers = append(movers, mover)
	}
	return movers, nil
}

func (c *AlphaVantageClient) query(ctx context.Context, params url.Values, out any) error {
	if !c.Enabled() {
		return fmt.Errorf("%w: ALPHAVANTAGE_API_KEY is not set", domain.ErrNotConfigured)
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("alpha vantage request",
		zap.String("function", params.Get("function")),
		zap.String("symbol", params.Get("symbol")),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (e timeSeriesDailyEntry) toBar(day string) (domain.DailyBar, error) {
	date, err := time.Parse(alphaVantageDateLayout, day)
	if err != nil {
		return domain.DailyBar{}, err
	}

	fields := []string{e.Open, e.High, e.Low, e.Close, e.Volume}
	values := make([]float64, len(fields))
	for i, field := range fields {
		if values[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return domain.DailyBar{}, err
		}
	}

	return domain.DailyBar{
		Date:   date,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

func (e topMoverEntry) toMover() (domain.Mover, error) {
	price, err := strconv.ParseFloat(e.Price, 64)
	if err != nil {
		return domain.Mover{}, err
	}
	change, err := strconv.ParseFloat(e.ChangeAmount, 64)
	if err != nil {
		return domain.Mover{}, err
	}
	volume, err := strconv.ParseFloat(e.Volume, 64)
	if err != nil {
		return domain.Mover{}, err
	}

	return domain.Mover{
		Symbol:           e.Ticker,
		Price:            price,
		ChangeAmount:     change,
		ChangePercentage: e.ChangePercentage,
		Volume:           volume,
	}, nil
}
