package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/platform/messaging/producers"
	"github.com/shopspring/decimal"
)

// RateSetter records a new exchange rate
type RateSetter interface {
	SetRate(ctx context.Context, value float64, source string) (*exchange.Rate, error)
}

// RateQuote is one message of the rate feed. The rate may be a JSON number or string.
type RateQuote struct {
	USDToLocal decimal.Decimal `json:"usd_to_local"`
	Source     string          `json:"source"`
}

// RateEventHandler applies rate feed messages to the rate manager
type RateEventHandler struct {
	rates    RateSetter
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewRateEventHandler creates a new handler. producer may be nil when no DLQ is configured.
func NewRateEventHandler(logger *slog.Logger, rates RateSetter, producer producers.DeadLetterPublisher) *RateEventHandler {
	return &RateEventHandler{
		rates:    rates,
		producer: producer,
		logger:   logger,
	}
}

// HandleMessage applies one quote. Quotes that can never be applied go to the DLQ and are
// acknowledged; a storage failure is returned so the offset is not committed.
func (h *RateEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var quote RateQuote
	if err := json.Unmarshal(value, &quote); err != nil {
		return h.deadLetter(ctx, key, value, "unparseable rate quote", err)
	}

	source := quote.Source
	if source == "" {
		source = string(key)
	}
	if source == "" {
		source = "feed"
	}

	rateValue, _ := quote.USDToLocal.Float64()
	rate, err := h.rates.SetRate(ctx, rateValue, source)
	if err != nil {
		var invalid exchange.InvalidRate
		if errors.As(err, &invalid) {
			return h.deadLetter(ctx, key, value, "invalid rate value", err)
		}
		h.logger.Error("Failed to apply rate quote",
			"source", source,
			"usd_to_local", quote.USDToLocal.String(),
			"error", err,
		)
		return fmt.Errorf("applying rate quote from %s failed: %w", source, err)
	}

	h.logger.Info("Applied rate quote from feed",
		"rate_id", rate.ID,
		"source", source,
		"usd_to_local", rate.USDToLocal.String(),
	)
	return nil
}

func (h *RateEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error("Rejected rate quote",
		"reason", reason,
		"error", cause,
		"message_key", string(key),
	)

	if h.producer != nil {
		dlqReason := fmt.Sprintf("%s: %s", reason, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
			h.logger.Error("Failed to publish rate quote to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", reason, cause)
}
