package handler

import (
	"paycrypt-gateway/internal/adapter/http/dto"
	"paycrypt-gateway/internal/core/domain"
	"paycrypt-gateway/internal/core/ports"
	"paycrypt-gateway/pkg/apperror"
	"paycrypt-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConfirmationHandler handles confirmation intake endpoints.
type ConfirmationHandler struct {
	confirmSvc ports.ConfirmationService
}

// NewConfirmationHandler creates a new ConfirmationHandler.
func NewConfirmationHandler(confirmSvc ports.ConfirmationService) *ConfirmationHandler {
	return &ConfirmationHandler{confirmSvc: confirmSvc}
}

// ConfirmCrypto handles POST /api/v1/confirmations/crypto. Rejected
// confirmations (double confirmation, no-op) are 200s with applied=false:
// the provider's signal was received and the outcome is definite.
func (h *ConfirmationHandler) ConfirmCrypto(c *gin.Context) {
	var req dto.ConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if req.PaymentID == "" && req.TransactionID == "" {
		response.Error(c, apperror.Validation("payment_id or transaction_id is required"))
		return
	}

	conf := domain.Confirmation{
		TxHash:         req.ResolveTxHash(),
		Count:          req.Confirmations,
		ProviderStatus: req.Status,
	}

	var result *ports.ConfirmationResult
	var err error
	if req.PaymentID != "" {
		paymentID, parseErr := uuid.Parse(req.PaymentID)
		if parseErr != nil {
			response.Error(c, apperror.Validation("invalid payment_id"))
			return
		}
		result, err = h.confirmSvc.Confirm(c.Request.Context(), paymentID, conf)
	} else {
		result, err = h.confirmSvc.ConfirmByTransactionID(c.Request.Context(), req.TransactionID, conf)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToConfirmationResponse(result))
}
