package domain

import "time"

// DailyBar is one trading day of OHLCV data.
type DailyBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceHistory holds bars in ascending date order. MA50 and MA200 are
// aligned with Bars and hold nil until the window is full.
type PriceHistory struct {
	Symbol string     `json:"symbol"`
	Bars   []DailyBar `json:"bars"`
	MA50   []*float64 `json:"ma_50"`
	MA200  []*float64 `json:"ma_200"`
}

// Latest returns at most n of the most recent bars, newest first.
func (h PriceHistory) Latest(n int) []DailyBar {
	if n > len(h.Bars) {
		n = len(h.Bars)
	}
	out := make([]DailyBar, 0, n)
	for i := len(h.Bars) - 1; i >= len(h.Bars)-n; i-- {
		out = append(out, h.Bars[i])
	}
	return out
}

// Mover is one entry of the top gainers list.
type Mover struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	ChangeAmount     float64 `json:"change_amount"`
	ChangePercentage string  `json:"change_percentage"`
	Volume           float64 `json:"volume"`
}
