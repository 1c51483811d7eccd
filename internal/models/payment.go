package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState represents the state of a recorded payment.
type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStatePaid    PaymentState = "paid"
	PaymentStateOverdue PaymentState = "overdue"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodGcash PaymentMethod = "gcash"
)

// PaymentType distinguishes full settlement from a partial payment.
type PaymentType string

const (
	PaymentTypeFull    PaymentType = "full"
	PaymentTypePartial PaymentType = "partial"
)

// Payment is a record of money applied to a category. Payments are immutable
// once created; there is no update path.
type Payment struct {
	Base
	CategoryID       string          `gorm:"type:uuid;not null;index" json:"category_id"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	PaymentDate      time.Time       `gorm:"not null" json:"payment_date"`
	Status           PaymentState    `gorm:"not null;default:pending" json:"status"`
	Method           PaymentMethod   `gorm:"not null;default:cash" json:"method"`
	Type             PaymentType     `gorm:"not null;default:full" json:"type"`
	TransactionID    string          `json:"transaction_id,omitempty"`
	GcashAccountUsed string          `json:"gcash_account_used,omitempty"`
	ProofImage       string          `json:"proof_image,omitempty"`
	Notes            string          `json:"notes,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
