package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pondo/internal/errors"
	"pondo/internal/models"
)

// budgetService maintains the per-user monthly envelopes and their
// append-only history ledger. TotalBudget is never mutated without a
// matching BudgetHistory insertion in the same database transaction, so the
// envelope total always equals the sum of its history entries.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// GetOrCreate returns the envelope for the month containing the given date,
// creating a zero-total one if none exists.
func (s *budgetService) GetOrCreate(userID string, month time.Time) (*models.MonthlyBudget, error) {
	budget, _, err := s.getOrCreateTx(s.db, userID, month)
	return budget, err
}

func (s *budgetService) getOrCreateTx(tx *gorm.DB, userID string, month time.Time) (*models.MonthlyBudget, bool, error) {
	anchor := models.MonthAnchor(month)

	var budget models.MonthlyBudget
	err := tx.Where("user_id = ? AND month = ?", userID, anchor).First(&budget).Error
	if err == nil {
		return &budget, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget = models.MonthlyBudget{
		UserID:      userID,
		Month:       anchor,
		TotalBudget: decimal.Zero,
	}
	if err := tx.Create(&budget).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, true, nil
}

// AddAmount increments the envelope total and appends the matching history
// entry in one database transaction. The envelope is created on demand.
func (s *budgetService) AddAmount(userID string, month time.Time, amount decimal.Decimal, notes string) (*models.MonthlyBudget, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var budget *models.MonthlyBudget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		budget, _, txErr = s.getOrCreateTx(tx, userID, month)
		if txErr != nil {
			return txErr
		}
		return s.addAmountTx(tx, budget, amount, notes)
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) addAmountTx(tx *gorm.DB, budget *models.MonthlyBudget, amount decimal.Decimal, notes string) error {
	budget.TotalBudget = budget.TotalBudget.Add(amount)
	if err := tx.Model(budget).Update("total_budget", budget.TotalBudget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	history := &models.BudgetHistory{
		BudgetID:    budget.ID,
		AmountAdded: amount,
		Notes:       notes,
	}
	if err := tx.Create(history).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetBudget sets the envelope total to newTotal. Budget reduction is
// categorically disallowed: a lower value is rejected and overspending is
// tracked through the remaining budget going negative instead. An increase
// is recorded as a history addition of the difference.
func (s *budgetService) SetBudget(userID string, month time.Time, newTotal decimal.Decimal) (*models.MonthlyBudget, error) {
	if newTotal.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
	}

	var budget *models.MonthlyBudget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var created bool
		var txErr error
		budget, created, txErr = s.getOrCreateTx(tx, userID, month)
		if txErr != nil {
			return txErr
		}

		switch newTotal.Cmp(budget.TotalBudget) {
		case 0:
			return nil
		case -1:
			return apperrors.ErrBudgetReduce
		}

		notes := "Budget update"
		if created || budget.TotalBudget.IsZero() {
			notes = "Initial budget"
		}
		return s.addAmountTx(tx, budget, newTotal.Sub(budget.TotalBudget), notes)
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// RemainingBudget computes total budget minus the live expense aggregate for
// the month containing the given date. A missing envelope counts as zero, so
// the budget guard rejects any positive payment until a budget is created.
func (s *budgetService) RemainingBudget(tx *gorm.DB, userID string, month time.Time) (decimal.Decimal, error) {
	anchor := models.MonthAnchor(month)

	var budget models.MonthlyBudget
	if err := tx.Where("user_id = ? AND month = ?", userID, anchor).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	expenses, err := s.monthExpenses(tx, userID, anchor)
	if err != nil {
		return decimal.Zero, err
	}
	return budget.TotalBudget.Sub(expenses), nil
}

// CurrentBudget returns the envelope for the month together with its derived
// totals, creating a zero envelope if none exists yet.
func (s *budgetService) CurrentBudget(userID string, month time.Time) (*BudgetSummary, error) {
	budget, err := s.GetOrCreate(userID, month)
	if err != nil {
		return nil, err
	}

	expenses, err := s.monthExpenses(s.db, userID, budget.Month)
	if err != nil {
		return nil, err
	}

	return &BudgetSummary{
		Budget:          budget,
		TotalExpenses:   expenses,
		RemainingBudget: budget.TotalBudget.Sub(expenses),
	}, nil
}

// monthExpenses sums expense transactions for the month containing the
// anchor date. Recomputed on every read so it always reflects the latest
// transaction set.
func (s *budgetService) monthExpenses(tx *gorm.DB, userID string, month time.Time) (decimal.Decimal, error) {
	start, end := models.MonthRange(month)

	var total decimal.Decimal
	err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?",
			userID, models.TransactionTypeExpense, start, end).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// MonthlyOverview returns budget vs expense data for the last 12 months,
// newest first.
func (s *budgetService) MonthlyOverview(userID string, today time.Time) ([]MonthOverview, error) {
	overview := make([]MonthOverview, 0, 12)

	for i := 0; i < 12; i++ {
		anchor := models.MonthAnchor(time.Date(today.Year(), today.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC))
		start, end := models.MonthRange(anchor)

		budgeted := decimal.Zero
		var budget models.MonthlyBudget
		err := s.db.Where("user_id = ? AND month = ?", userID, anchor).First(&budget).Error
		if err == nil {
			budgeted = budget.TotalBudget
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		expenses, err := s.monthExpenses(s.db, userID, anchor)
		if err != nil {
			return nil, err
		}

		var count int64
		if err := s.db.Model(&models.Transaction{}).
			Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		overview = append(overview, MonthOverview{
			MonthKey:         anchor.Format("2006-01"),
			MonthName:        anchor.Format("January 2006"),
			Budget:           budgeted,
			Expenses:         expenses,
			TransactionCount: count,
		})
	}

	return overview, nil
}

// MonthDetail returns the budget, expense total, transactions, and budget
// history for a single month identified by a "YYYY-MM" key.
func (s *budgetService) MonthDetail(userID, monthKey string) (*MonthDetail, error) {
	anchor, err := time.Parse("2006-01", monthKey)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid month key %q, expected YYYY-MM", monthKey))
	}
	start, end := models.MonthRange(anchor)

	detail := &MonthDetail{
		MonthName: anchor.Format("January 2006"),
		Budget:    decimal.Zero,
		History:   []models.BudgetHistory{},
	}

	var budget models.MonthlyBudget
	err = s.db.Where("user_id = ? AND month = ?", userID, anchor).First(&budget).Error
	switch {
	case err == nil:
		detail.Budget = budget.TotalBudget
		if err := s.db.Where("budget_id = ?", budget.ID).
			Order("created_at DESC").
			Find(&detail.History).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	detail.Expenses, err = s.monthExpenses(s.db, userID, anchor)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Order("date DESC").
		Find(&detail.Transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return detail, nil
}
