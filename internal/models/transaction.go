package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction is a ledger line for income or expense. Expense transactions
// drive the monthly budget arithmetic; most are emitted as a side effect of
// payment recording and keep a nullable link back to their category.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string          `gorm:"not null" json:"title"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Type        TransactionType `gorm:"not null" json:"type"`
	CategoryID  *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `json:"description"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
