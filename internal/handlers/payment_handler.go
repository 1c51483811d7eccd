package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pondo/internal/errors"
	"pondo/internal/models"
	"pondo/internal/pagination"
	"pondo/internal/services"
)

// PaymentHandler handles payment reconciliation requests.
type PaymentHandler struct {
	paymentService services.PaymentServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest represents the request payload for recording a payment
// against a category.
type RecordPaymentRequest struct {
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Date             string          `json:"date" binding:"omitempty,calendar_date"`
	Method           string          `json:"method" binding:"required,payment_method"`
	Type             string          `json:"type" binding:"required,payment_type"`
	TransactionID    string          `json:"transaction_id" binding:"max=100"`
	GcashAccountUsed string          `json:"gcash_account_used" binding:"max=20"`
	ProofImage       string          `json:"proof_image"`
	Notes            string          `json:"notes" binding:"max=500"`
}

// RecordPayment handles recording a full or partial payment.
// @Summary     Record a payment
// @Description Record a full or partial payment against a category. Full payments mark the category paid; partial payments reduce the remaining amount.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Category ID"
// @Param       request body RecordPaymentRequest true "Payment details"
// @Success     201 {object} services.PaymentResult "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input, amount mismatch, or insufficient budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	draft := services.PaymentDraft{
		Amount:           req.Amount,
		Method:           models.PaymentMethod(req.Method),
		Type:             models.PaymentType(req.Type),
		TransactionID:    req.TransactionID,
		GcashAccountUsed: req.GcashAccountUsed,
		ProofImage:       req.ProofImage,
		Notes:            req.Notes,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date"))
			return
		}
		draft.Date = date
	}

	result, err := h.paymentService.RecordPayment(userID, categoryID, draft, today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetCategoryPayments handles listing the payments recorded against a category.
// @Summary     Get category payments
// @Description Get a paginated list of payments recorded against a category, newest first
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Category ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Payment] "Paginated payments"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/payments [get]
func (h *PaymentHandler) GetCategoryPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.paymentService.GetCategoryPayments(userID, categoryID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
