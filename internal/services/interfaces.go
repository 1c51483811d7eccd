package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pondo/internal/models"
	"pondo/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// CategoryUpdate holds optional fields for updating a category. Nil pointers
// leave the corresponding column untouched.
type CategoryUpdate struct {
	Name        string
	Amount      *decimal.Decimal
	DueDate     *time.Time
	Kind        *models.CategoryKind
	IsMonthly   *bool
	IsActive    *bool
	GcashNumber *string
}

// CategoryServicer defines the contract for bill-category business logic,
// including the monthly rollover lifecycle. Read paths resolve stale monthly
// state lazily: there is no background scheduler, so every fetch applies
// ResetForNewMonth before returning.
type CategoryServicer interface {
	CreateCategory(userID, name string, amount decimal.Decimal, dueDate time.Time, kind models.CategoryKind, isMonthly bool, gcashNumber string) (*models.Category, error)
	GetUserCategories(userID string, today time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string, today time.Time) (*models.Category, error)
	UpdateCategory(userID, categoryID string, update CategoryUpdate) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	MarkAsPaid(tx *gorm.DB, category *models.Category, today time.Time) error
	ResetForNewMonth(category *models.Category, today time.Time) (bool, error)
	TogglePaymentStatus(userID, categoryID string, today time.Time) (*models.Category, *models.Transaction, error)
	DueSoon(userID string, today time.Time) ([]models.Category, error)
}

// PaymentDraft is a candidate payment submitted against a category.
type PaymentDraft struct {
	Amount           decimal.Decimal
	Date             time.Time
	Method           models.PaymentMethod
	Type             models.PaymentType
	TransactionID    string
	GcashAccountUsed string
	ProofImage       string
	Notes            string
}

// PaymentResult bundles the records touched by a successful payment.
type PaymentResult struct {
	Payment     *models.Payment     `json:"payment"`
	Category    *models.Category    `json:"category"`
	Transaction *models.Transaction `json:"transaction"`
}

// PaymentServicer defines the contract for payment reconciliation.
type PaymentServicer interface {
	RecordPayment(userID, categoryID string, draft PaymentDraft, today time.Time) (*PaymentResult, error)
	GetCategoryPayments(userID, categoryID string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error)
}

// BudgetSummary is the computed state of one monthly envelope.
type BudgetSummary struct {
	Budget          *models.MonthlyBudget `json:"budget"`
	TotalExpenses   decimal.Decimal       `json:"total_expenses"`
	RemainingBudget decimal.Decimal       `json:"remaining_budget"`
}

// MonthOverview is one row of the 12-month dashboard widget.
type MonthOverview struct {
	MonthKey         string          `json:"month_key"`
	MonthName        string          `json:"month_name"`
	Budget           decimal.Decimal `json:"budget"`
	Expenses         decimal.Decimal `json:"expenses"`
	TransactionCount int64           `json:"transaction_count"`
}

// MonthDetail is the drill-down view for a single month.
type MonthDetail struct {
	MonthName    string                 `json:"month_name"`
	Budget       decimal.Decimal        `json:"budget"`
	Expenses     decimal.Decimal        `json:"expenses"`
	Transactions []models.Transaction   `json:"transactions"`
	History      []models.BudgetHistory `json:"budget_history"`
}

// BudgetServicer defines the contract for the monthly budget ledger and the
// budget guard. RemainingBudget takes an explicit *gorm.DB so callers inside
// a database transaction guard against the same snapshot they commit with.
type BudgetServicer interface {
	GetOrCreate(userID string, month time.Time) (*models.MonthlyBudget, error)
	AddAmount(userID string, month time.Time, amount decimal.Decimal, notes string) (*models.MonthlyBudget, error)
	SetBudget(userID string, month time.Time, newTotal decimal.Decimal) (*models.MonthlyBudget, error)
	RemainingBudget(tx *gorm.DB, userID string, month time.Time) (decimal.Decimal, error)
	CurrentBudget(userID string, month time.Time) (*BudgetSummary, error)
	MonthlyOverview(userID string, today time.Time) ([]MonthOverview, error)
	MonthDetail(userID, monthKey string) (*MonthDetail, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, title string, amount decimal.Decimal, transactionType models.TransactionType, categoryID *string, date time.Time, description string) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}
