package http

import (
	"net/http"

	"go.uber.org/zap"
)

type Handlers struct {
	Sip       *SipHandler
	Market    *MarketHandler
	Dashboard *DashboardHandler
}

// NewRouter mounts every endpoint behind the rate limiter, except the
// health check, and wraps the mux with request logging.
func NewRouter(h Handlers, limiter Limiter, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	limited := func(fn http.HandlerFunc) http.Handler {
		return RateLimitMiddleware(limiter, fn)
	}

	mux := http.NewServeMux()
	mux.Handle("/sip/calculate", limited(h.Sip.Calculate))
	mux.Handle("/sip/compare", limited(h.Sip.Compare))
	mux.Handle("/sip/schedule", limited(h.Sip.Schedule))
	mux.Handle("/sip/report.pdf", limited(h.Sip.Report))
	mux.Handle("/stock/history", limited(h.Market.PriceHistory))
	mux.Handle("/stock/top-gainers", limited(h.Market.TopGainers))
	mux.Handle("/", limited(h.Dashboard.Index))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	return LoggingMiddleware(logger, mux)
}
