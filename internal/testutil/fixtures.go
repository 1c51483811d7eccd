package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pondo/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec builds a decimal from a string literal, failing the test on bad input.
func Dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", value, err)
	}
	return d
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a monthly unpaid category with the given amount
// and due date.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, amount decimal.Decimal, dueDate time.Time) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Bill %d", nextID()),
		Amount:        amount,
		DueDate:       dueDate,
		Kind:          models.CategoryKindOther,
		IsActive:      true,
		IsMonthly:     true,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates a monthly envelope with the given total and a
// matching initial history entry, preserving the ledger-sum invariant.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, month time.Time, total decimal.Decimal) *models.MonthlyBudget {
	t.Helper()

	budget := &models.MonthlyBudget{
		UserID:      userID,
		Month:       models.MonthAnchor(month),
		TotalBudget: total,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}

	if !total.IsZero() {
		history := &models.BudgetHistory{
			BudgetID:    budget.ID,
			AmountAdded: total,
			Notes:       "Initial budget",
		}
		if err := db.Create(history).Error; err != nil {
			t.Fatalf("failed to create test budget history: %v", err)
		}
	}
	return budget
}

// CreateTestTransaction creates a transaction of the given type and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: userID,
		Title:  fmt.Sprintf("Test Transaction %d", nextID()),
		Amount: amount,
		Type:   txType,
		Date:   date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
