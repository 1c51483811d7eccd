package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryKind classifies a bill category.
type CategoryKind string

const (
	CategoryKindRent           CategoryKind = "rent"
	CategoryKindInternet       CategoryKind = "internet"
	CategoryKindWater          CategoryKind = "water"
	CategoryKindElectricity    CategoryKind = "electricity"
	CategoryKindShopping       CategoryKind = "shopping"
	CategoryKindFood           CategoryKind = "food"
	CategoryKindTransportation CategoryKind = "transportation"
	CategoryKindEntertainment  CategoryKind = "entertainment"
	CategoryKindHealth         CategoryKind = "health"
	CategoryKindEducation      CategoryKind = "education"
	CategoryKindOther          CategoryKind = "other"
)

// PaymentStatus is the payment state of a category for its current cycle.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Category represents a recurring or one-off bill obligation owned by a user.
// Amount is the remaining amount owed for the current cycle; partial payments
// reduce it in place. PaymentDate is set if and only if PaymentStatus is paid.
type Category struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate       time.Time       `gorm:"not null" json:"due_date"`
	Kind          CategoryKind    `gorm:"not null;default:other" json:"kind"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	IsMonthly     bool            `gorm:"default:true" json:"is_monthly"`
	PaymentStatus PaymentStatus   `gorm:"not null;default:unpaid" json:"payment_status"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	GcashNumber   string          `json:"gcash_number,omitempty"`

	Payments     []Payment     `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"transactions,omitempty"`
}

// IsDueSoon reports whether the category is due within the next two days.
func (c *Category) IsDueSoon(today time.Time) bool {
	days := daysUntil(today, c.DueDate)
	return days >= 0 && days <= 2
}

// IsOverdue reports whether the category's due date has passed.
func (c *Category) IsOverdue(today time.Time) bool {
	return daysUntil(today, c.DueDate) < 0
}

// NeedsMonthlyReset reports whether the category should roll over into a new
// cycle: monthly, currently paid, and last paid in a different calendar month.
func (c *Category) NeedsMonthlyReset(today time.Time) bool {
	return c.IsMonthly &&
		c.PaymentStatus == PaymentStatusPaid &&
		c.PaymentDate != nil &&
		(c.PaymentDate.Month() != today.Month() || c.PaymentDate.Year() != today.Year())
}

// NextDueDate returns the due date advanced by one calendar month, with the
// day clamped to the target month's last day (Jan 31 -> Feb 28/29).
func (c *Category) NextDueDate() time.Time {
	year, month := c.DueDate.Year(), c.DueDate.Month()
	if month == time.December {
		year, month = year+1, time.January
	} else {
		month++
	}
	day := c.DueDate.Day()
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, c.DueDate.Location())
}

// daysUntil returns the number of whole calendar days from today until due,
// ignoring the time-of-day component of both.
func daysUntil(today, due time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}

func lastDayOfMonth(year int, month time.Month) int {
	// day 0 of the following month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
