package http

import (
	"net/http"

	"go.uber.org/zap"

	"sip-dashboard/domain"
	"sip-dashboard/service"
)

type MarketHandler struct {
	service *service.MarketService
	logger  *zap.Logger
}

func NewMarketHandler(service *service.MarketService, logger *zap.Logger) *MarketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketHandler{service: service, logger: logger}
}

type topGainersResponse struct {
	Count  int            `json:"count"`
	Movers []domain.Mover `json:"movers"`
}

func (h *MarketHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	history, err := h.service.PriceHistory(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, history)
}

func (h *MarketHandler) TopGainers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	movers, err := h.service.TopGainers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, r, h.logger, topGainersResponse{Count: len(movers), Movers: movers})
}
