package handler

import (
	"log/slog"

	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/flowi-ledger/internal/ledger_api/service"
	"github.com/gin-gonic/gin"
)

// RateHandler handles HTTP requests for exchange rate operations
type RateHandler struct {
	rateService service.RateService
	logger      *slog.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(logger *slog.Logger, rateService service.RateService) *RateHandler {
	return &RateHandler{
		rateService: rateService,
		logger:      logger,
	}
}

// Current returns the rate in force, 404 when none has been recorded
func (h *RateHandler) Current(c *gin.Context) {
	rate, err := h.rateService.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to read current rate", err)
		return
	}
	RespondOK(c, mapRateToResponse(rate))
}

// Set records a new rate. Non-positive values are rejected with INVALID_RATE.
func (h *RateHandler) Set(c *gin.Context) {
	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rate, err := h.rateService.SetRate(c.Request.Context(), req.USDToLocal, req.Source)
	if err != nil {
		respondError(c, h.logger, "Failed to set rate", err)
		return
	}
	RespondOK(c, mapRateToResponse(rate))
}

// History lists recorded rates, newest first
func (h *RateHandler) History(c *gin.Context) {
	var query RateHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}

	rates, err := h.rateService.History(c.Request.Context(), query.Limit)
	if err != nil {
		respondError(c, h.logger, "Failed to list rate history", err)
		return
	}

	out := make([]*RateResponse, 0, len(rates))
	for i := range rates {
		out = append(out, mapRateToResponse(&rates[i]))
	}
	RespondWithList(c, out, len(out))
}

// Convert moves an amount between USD and VES at the current rate
func (h *RateHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	from, err := shared.ParseCurrency(req.From)
	if err != nil {
		respondError(c, h.logger, "Invalid source currency", err)
		return
	}
	to, err := shared.ParseCurrency(req.To)
	if err != nil {
		respondError(c, h.logger, "Invalid target currency", err)
		return
	}

	money, rate, err := h.rateService.Convert(c.Request.Context(), req.Amount, from, to)
	if err != nil {
		respondError(c, h.logger, "Failed to convert amount", err)
		return
	}

	RespondOK(c, ConvertResponse{
		Amount:    money.Amount.String(),
		Currency:  string(money.Currency),
		Formatted: money.String(),
		Rate:      mapRateToResponse(rate),
	})
}
