package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pondo/internal/errors"
	"pondo/internal/models"
	"pondo/internal/pagination"
)

// categoryService handles bill-category business logic, including the
// monthly rollover lifecycle.
type categoryService struct {
	db            *gorm.DB
	budgetService BudgetServicer
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, budgetService BudgetServicer) CategoryServicer {
	return &categoryService{db: db, budgetService: budgetService}
}

// CreateCategory creates a new bill category for the user.
func (s *categoryService) CreateCategory(
	userID, name string,
	amount decimal.Decimal,
	dueDate time.Time,
	kind models.CategoryKind,
	isMonthly bool,
	gcashNumber string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}
	if dueDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due date is required")
	}
	if kind == "" {
		kind = models.CategoryKindOther
	}

	category := &models.Category{
		UserID:        userID,
		Name:          name,
		Amount:        amount,
		DueDate:       dueDate,
		Kind:          kind,
		IsActive:      true,
		IsMonthly:     isMonthly,
		PaymentStatus: models.PaymentStatusUnpaid,
		GcashNumber:   gcashNumber,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories returns a paginated list of the user's active categories.
// Monthly categories whose paid month has passed are rolled over before the
// list is returned.
func (s *categoryService) GetUserCategories(userID string, today time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ? AND is_active = ?", userID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("due_date ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range categories {
		if _, err := s.ResetForNewMonth(&categories[i], today); err != nil {
			return nil, err
		}
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID returns a category by ID if it belongs to the user, with
// any pending monthly rollover applied first.
func (s *categoryService) GetCategoryByID(userID, categoryID string, today time.Time) (*models.Category, error) {
	category, err := s.fetchCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ResetForNewMonth(category, today); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) fetchCategory(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category's fields.
func (s *categoryService) UpdateCategory(userID, categoryID string, update CategoryUpdate) (*models.Category, error) {
	category, err := s.fetchCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != "" {
		updates["name"] = update.Name
	}
	if update.Amount != nil {
		if update.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
		}
		updates["amount"] = *update.Amount
	}
	if update.DueDate != nil {
		updates["due_date"] = *update.DueDate
	}
	if update.Kind != nil {
		updates["kind"] = *update.Kind
	}
	if update.IsMonthly != nil {
		updates["is_monthly"] = *update.IsMonthly
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}
	if update.GcashNumber != nil {
		updates["gcash_number"] = *update.GcashNumber
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory removes a category together with its payments. Transactions
// keep their ledger lines but lose the category reference.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.fetchCategory(userID, categoryID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Payment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// MarkAsPaid sets the category to paid as of today without touching the due
// date. The due date only moves on monthly rollover.
func (s *categoryService) MarkAsPaid(tx *gorm.DB, category *models.Category, today time.Time) error {
	paidOn := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	category.PaymentStatus = models.PaymentStatusPaid
	category.PaymentDate = &paidOn

	err := tx.Model(category).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
		"payment_date":   paidOn,
	}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ResetForNewMonth rolls a monthly category into its next cycle when its
// paid month has passed: due date advances one calendar month (day clamped
// to month end), status returns to unpaid, and the payment date is cleared.
// Reports whether a reset occurred.
func (s *categoryService) ResetForNewMonth(category *models.Category, today time.Time) (bool, error) {
	if !category.NeedsMonthlyReset(today) {
		return false, nil
	}

	nextDue := category.NextDueDate()
	err := s.db.Model(category).Updates(map[string]interface{}{
		"due_date":       nextDue,
		"payment_status": models.PaymentStatusUnpaid,
		"payment_date":   nil,
	}).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	category.DueDate = nextDue
	category.PaymentStatus = models.PaymentStatusUnpaid
	category.PaymentDate = nil
	return true, nil
}

// TogglePaymentStatus flips a category between unpaid and paid without an
// associated payment record. Marking paid guards the full amount against the
// current month's remaining budget and emits an expense transaction; marking
// unpaid only clears the status and payment date, it does not reverse the
// transaction or restore budget.
func (s *categoryService) TogglePaymentStatus(userID, categoryID string, today time.Time) (*models.Category, *models.Transaction, error) {
	category, err := s.fetchCategory(userID, categoryID)
	if err != nil {
		return nil, nil, err
	}

	if category.PaymentStatus == models.PaymentStatusPaid {
		err := s.db.Model(category).Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusUnpaid,
			"payment_date":   nil,
		}).Error
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		category.PaymentStatus = models.PaymentStatusUnpaid
		category.PaymentDate = nil
		return category, nil, nil
	}

	var transaction *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		remaining, txErr := s.budgetService.RemainingBudget(tx, userID, models.MonthAnchor(today))
		if txErr != nil {
			return txErr
		}
		if category.Amount.GreaterThan(remaining) {
			return apperrors.ErrInsufficientBudget
		}

		if txErr := s.MarkAsPaid(tx, category, today); txErr != nil {
			return txErr
		}

		transaction = &models.Transaction{
			UserID:      userID,
			Title:       "Payment for " + category.Name,
			Amount:      category.Amount,
			Type:        models.TransactionTypeExpense,
			CategoryID:  &category.ID,
			Date:        *category.PaymentDate,
			Description: "The payment was processed through cash",
		}
		if txErr := tx.Create(transaction).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return category, transaction, nil
}

// DueSoon returns the user's active unpaid categories that are due within
// the next two days or already overdue.
func (s *categoryService) DueSoon(userID string, today time.Time) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Where("user_id = ? AND is_active = ? AND payment_status = ?",
		userID, true, models.PaymentStatusUnpaid).
		Order("due_date ASC").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	dueSoon := make([]models.Category, 0, len(categories))
	for _, category := range categories {
		if category.IsDueSoon(today) || category.IsOverdue(today) {
			dueSoon = append(dueSoon, category)
		}
	}
	return dueSoon, nil
}
