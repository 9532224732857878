package handler

import (
	"paycrypt-gateway/internal/adapter/http/dto"
	"paycrypt-gateway/internal/core/ports"
	"paycrypt-gateway/pkg/apperror"
	"paycrypt-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventHandler exposes webhook event inspection endpoints for support
// tooling. Read-only: delivery state is mutated by the dispatcher alone.
type EventHandler struct {
	eventRepo ports.WebhookEventRepository
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventRepo ports.WebhookEventRepository) *EventHandler {
	return &EventHandler{eventRepo: eventRepo}
}

// GetEvent handles GET /api/v1/events/:id.
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid event id"))
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if event == nil {
		response.Error(c, apperror.ErrEventNotFound())
		return
	}

	response.OK(c, dto.ToEventResponse(event))
}

// ListPaymentEvents handles GET /api/v1/payments/:id/events.
func (h *EventHandler) ListPaymentEvents(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment id"))
		return
	}

	events, err := h.eventRepo.GetByPaymentID(c.Request.Context(), paymentID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	out := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		out = append(out, dto.ToEventResponse(&events[i]))
	}
	response.OK(c, out)
}
