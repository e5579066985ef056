package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"sip-dashboard/config"
	httpLayer "sip-dashboard/http"
	"sip-dashboard/repository"
	"sip-dashboard/service"
)

func main() {
	cfg, err := config.Load(os.Getenv("SIP_CONFIG"))
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	alphaVantage := service.NewAlphaVantageClient(
		cfg.Market.AlphaVantageAPIKey,
		cfg.Market.AlphaVantageURL,
		cfg.Market.RequestTimeout,
		logger,
	)
	if !alphaVantage.Enabled() {
		logger.Warn("ALPHAVANTAGE_API_KEY not set, market data endpoints will return 503")
	}

	var history service.HistoryProvider = alphaVantage
	if cfg.Market.HistoryProvider == config.ProviderAlpaca {
		history = service.NewAlpacaHistoryClient(cfg.Market.AlpacaAPIKey, cfg.Market.AlpacaSecretKey, logger)
	}

	sipService := service.NewSipService(cfg.Sip.StandardRatePercent, logger)
	reportService := service.NewReportService(sipService, logger)
	marketService := service.NewMarketService(history, alphaVantage, logger)

	handlers := httpLayer.Handlers{
		Sip:       httpLayer.NewSipHandler(sipService, reportService, logger),
		Market:    httpLayer.NewMarketHandler(marketService, logger),
		Dashboard: httpLayer.NewDashboardHandler(sipService, marketService, logger),
	}

	var limiter httpLayer.Limiter
	if cfg.Redis.Addr != "" {
		counter := repository.NewRedisCounter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
		defer counter.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.Market.RequestTimeout)
		if err := counter.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, requests will not be limited until it recovers",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancelPing()

		limiter = httpLayer.NewCounterRateLimiter(counter, cfg.RateLimit.Capacity, cfg.RateLimit.Window, logger)
	} else {
		rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
		defer rateLimiter.Stop()
		limiter = rateLimiter
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpLayer.NewRouter(handlers, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("starting server", zap.Error(err))
		return
	case <-quit:
		logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
