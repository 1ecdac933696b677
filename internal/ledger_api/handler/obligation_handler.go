package handler

import (
	"log/slog"

	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/ledger_api/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ObligationHandler handles HTTP requests for one obligation collection.
// The router mounts one handler per kind.
type ObligationHandler struct {
	kind              obligation.Kind
	obligationService service.ObligationService
	logger            *slog.Logger
}

// NewObligationHandler creates a new handler serving the kind collection
func NewObligationHandler(logger *slog.Logger, obligationService service.ObligationService, kind obligation.Kind) *ObligationHandler {
	return &ObligationHandler{
		kind:              kind,
		obligationService: obligationService,
		logger:            logger.With("kind", string(kind)),
	}
}

// List returns the reconciled collection narrowed by status, currency and q
func (h *ObligationHandler) List(c *gin.Context) {
	var query ObligationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}
	criteria, err := query.toCriteria()
	if err != nil {
		respondError(c, h.logger, "Invalid listing query", err)
		return
	}

	entries, err := h.obligationService.List(c.Request.Context(), h.kind, criteria)
	if err != nil {
		respondError(c, h.logger, "Failed to list obligations", err)
		return
	}
	RespondWithList(c, mapObligationsToResponse(entries), len(entries))
}

// Create stores a new pending entry
func (h *ObligationHandler) Create(c *gin.Context) {
	var req ObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.obligationService.Create(c.Request.Context(), h.kind, req.toInput())
	if err != nil {
		respondError(c, h.logger, "Failed to create obligation", err)
		return
	}
	RespondCreated(c, mapObligationToResponse(created))
}

// GetByID retrieves one entry, returning 404 if it is not in the collection
func (h *ObligationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	found, err := h.obligationService.Get(c.Request.Context(), h.kind, id)
	if err != nil {
		respondError(c, h.logger, "Failed to get obligation", err)
		return
	}
	RespondOK(c, mapObligationToResponse(found))
}

// Update rewrites the editable fields of an entry
func (h *ObligationHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req ObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.obligationService.Update(c.Request.Context(), h.kind, id, req.toInput())
	if err != nil {
		respondError(c, h.logger, "Failed to update obligation", err)
		return
	}
	RespondOK(c, mapObligationToResponse(updated))
}

// Delete removes an entry; deleting an absent id still answers 204
func (h *ObligationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.obligationService.Delete(c.Request.Context(), h.kind, id); err != nil {
		respondError(c, h.logger, "Failed to delete obligation", err)
		return
	}
	RespondNoContent(c)
}

// MarkPaid moves a pending or overdue entry to paid
func (h *ObligationHandler) MarkPaid(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	paid, err := h.obligationService.MarkPaid(c.Request.Context(), h.kind, id)
	if err != nil {
		respondError(c, h.logger, "Failed to mark obligation paid", err)
		return
	}
	RespondOK(c, mapObligationToResponse(paid))
}

// Cancel moves a pending or overdue entry to cancelled
func (h *ObligationHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	cancelled, err := h.obligationService.Cancel(c.Request.Context(), h.kind, id)
	if err != nil {
		respondError(c, h.logger, "Failed to cancel obligation", err)
		return
	}
	RespondOK(c, mapObligationToResponse(cancelled))
}

// Reconcile runs the overdue pass and reports which entries moved
func (h *ObligationHandler) Reconcile(c *gin.Context) {
	ids, err := h.obligationService.Reconcile(c.Request.Context(), h.kind)
	if err != nil {
		respondError(c, h.logger, "Failed to reconcile obligations", err)
		return
	}

	updated := make([]string, 0, len(ids))
	for _, id := range ids {
		updated = append(updated, id.String())
	}
	RespondOK(c, ReconcileResponse{Updated: updated})
}

// Summary returns the outstanding and overdue totals per currency
func (h *ObligationHandler) Summary(c *gin.Context) {
	summary, err := h.obligationService.Summary(c.Request.Context(), h.kind)
	if err != nil {
		respondError(c, h.logger, "Failed to summarize obligations", err)
		return
	}
	RespondOK(c, summary)
}

// NextReference suggests an unused reference number for today
func (h *ObligationHandler) NextReference(c *gin.Context) {
	ref, err := h.obligationService.NextReference(c.Request.Context(), h.kind)
	if err != nil {
		respondError(c, h.logger, "Failed to suggest reference number", err)
		return
	}
	RespondOK(c, ReferenceResponse{ReferenceNumber: ref})
}

func (h *ObligationHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Warn("Invalid obligation ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid obligation ID")
		return uuid.Nil, false
	}
	return id, true
}
