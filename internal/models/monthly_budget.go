package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBudget is a per-user spending envelope for one calendar month,
// keyed by the month's first day. TotalBudget is maintained as the sum of
// the budget's history entries: every mutation appends a BudgetHistory row
// in the same operation.
type MonthlyBudget struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;uniqueIndex:idx_user_month" json:"user_id"`
	Month       time.Time       `gorm:"not null;uniqueIndex:idx_user_month" json:"month"`
	TotalBudget decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_budget"`

	History []BudgetHistory `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

// MonthAnchor normalizes t to the first day of its month at midnight UTC,
// the canonical key for MonthlyBudget rows.
func MonthAnchor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the half-open interval [start, end) covering the month
// containing t.
func MonthRange(t time.Time) (start, end time.Time) {
	start = MonthAnchor(t)
	return start, start.AddDate(0, 1, 0)
}
