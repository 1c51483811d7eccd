package models

import "github.com/shopspring/decimal"

// BudgetHistory is an append-only ledger entry recording a single addition
// to a MonthlyBudget. Entries are never updated or deleted once written.
type BudgetHistory struct {
	Base
	BudgetID    string          `gorm:"type:uuid;not null;index" json:"budget_id"`
	AmountAdded decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_added"`
	Notes       string          `json:"notes,omitempty"`

	Budget MonthlyBudget `gorm:"foreignKey:BudgetID" json:"-"`
}
