package services

import (
	"fmt"

	"time"

	"gorm.io/gorm"

	apperrors "pondo/internal/errors"
	"pondo/internal/models"
	"pondo/internal/pagination"
)

// paymentService reconciles candidate payments against a category and the
// caller's monthly budget. All effects of a successful payment (payment row,
// category mutation, expense transaction) commit in a single database
// transaction, so a failure at any step leaves no partial state.
type paymentService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	budgetService   BudgetServicer
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB, categoryService CategoryServicer, budgetService BudgetServicer) PaymentServicer {
	return &paymentService{
		db:              db,
		categoryService: categoryService,
		budgetService:   budgetService,
	}
}

// RecordPayment validates and applies a payment against a category.
//
// Validation order: method-specific fields, amount-vs-type arithmetic, the
// exceeds-amount safety net, then the budget guard for the month containing
// the payment date. Any rejection happens before persistence.
//
// On success a full payment marks the category paid; a partial payment
// reduces the category amount in place without touching due date or status.
// Either way an expense transaction is emitted, dated at the payment date.
func (s *paymentService) RecordPayment(userID, categoryID string, draft PaymentDraft, today time.Time) (*PaymentResult, error) {
	category, err := s.categoryService.GetCategoryByID(userID, categoryID, today)
	if err != nil {
		return nil, err
	}

	if draft.Date.IsZero() {
		draft.Date = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	}

	if draft.Method == models.PaymentMethodGcash && (draft.TransactionID == "" || draft.GcashAccountUsed == "") {
		return nil, apperrors.ErrGcashDetailsRequired
	}

	if !draft.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment amount must be greater than zero")
	}

	switch draft.Type {
	case models.PaymentTypeFull:
		if !draft.Amount.Equal(category.Amount) {
			return nil, apperrors.WithMessage(apperrors.ErrPaymentAmountMismatch,
				fmt.Sprintf("full payment must be exactly %s", category.Amount.StringFixed(2)))
		}
	case models.PaymentTypePartial:
		if draft.Amount.GreaterThanOrEqual(category.Amount) {
			return nil, apperrors.WithMessage(apperrors.ErrPaymentAmountMismatch,
				fmt.Sprintf("partial payment must be less than %s", category.Amount.StringFixed(2)))
		}
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported payment type")
	}

	// Safety net for any payment type.
	if draft.Amount.GreaterThan(category.Amount) {
		return nil, apperrors.ErrPaymentExceedsAmount
	}

	result := &PaymentResult{Category: category}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		remaining, txErr := s.budgetService.RemainingBudget(tx, userID, models.MonthAnchor(draft.Date))
		if txErr != nil {
			return txErr
		}
		if draft.Amount.GreaterThan(remaining) {
			return apperrors.ErrInsufficientBudget
		}

		payment := &models.Payment{
			CategoryID:       category.ID,
			AmountPaid:       draft.Amount,
			PaymentDate:      draft.Date,
			Status:           models.PaymentStatePaid,
			Method:           draft.Method,
			Type:             draft.Type,
			TransactionID:    draft.TransactionID,
			GcashAccountUsed: draft.GcashAccountUsed,
			ProofImage:       draft.ProofImage,
			Notes:            draft.Notes,
		}
		if txErr := tx.Create(payment).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		result.Payment = payment

		if draft.Type == models.PaymentTypeFull {
			if txErr := s.categoryService.MarkAsPaid(tx, category, draft.Date); txErr != nil {
				return txErr
			}
		} else {
			category.Amount = category.Amount.Sub(draft.Amount)
			if txErr := tx.Model(category).Update("amount", category.Amount).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		}

		transaction := &models.Transaction{
			UserID:      userID,
			Title:       fmt.Sprintf("%s for %s", paymentLabel(draft.Type), category.Name),
			Amount:      draft.Amount,
			Type:        models.TransactionTypeExpense,
			CategoryID:  &category.ID,
			Date:        draft.Date,
			Description: paymentDescription(draft),
		}
		if txErr := tx.Create(transaction).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		result.Transaction = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func paymentLabel(paymentType models.PaymentType) string {
	if paymentType == models.PaymentTypeFull {
		return "Full Payment"
	}
	return "Partial Payment"
}

func paymentDescription(draft PaymentDraft) string {
	label := paymentLabel(draft.Type)
	if draft.Method == models.PaymentMethodGcash {
		return fmt.Sprintf("%s - The payment was processed through GCash (Account No. %s) under transaction number %s.",
			label, draft.GcashAccountUsed, draft.TransactionID)
	}
	return fmt.Sprintf("%s - The payment was processed through cash.", label)
}

// GetCategoryPayments returns the payments recorded against a category,
// newest first.
func (s *paymentService) GetCategoryPayments(userID, categoryID string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error) {
	// Ownership check; a foreign category is a 404.
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrCategoryNotFound
	}

	page.Defaults()

	base := s.db.Model(&models.Payment{}).Where("category_id = ?", categoryID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.Payment
	if err := base.Scopes(pagination.Paginate(page)).Order("payment_date DESC").Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}
