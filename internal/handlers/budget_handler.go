package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pondo/internal/errors"
	"pondo/internal/services"
)

// BudgetHandler handles monthly budget requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// AddBudgetRequest represents the request payload for adding to the current
// month's budget.
type AddBudgetRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes" binding:"max=255"`
}

// SetBudgetRequest represents the request payload for setting the current
// month's budget total.
type SetBudgetRequest struct {
	TotalBudget decimal.Decimal `json:"total_budget" binding:"required"`
}

// GetCurrentBudget handles retrieving the current month's budget summary.
// @Summary     Get current budget
// @Description Get the current month's budget envelope with expense and remaining totals
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.BudgetSummary "Current budget summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/current [get]
func (h *BudgetHandler) GetCurrentBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.CurrentBudget(userID, today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddBudget handles adding an amount to the current month's budget.
// @Summary     Add to budget
// @Description Add an amount to the current month's budget and record it in the budget history
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddBudgetRequest true "Amount to add"
// @Success     200 {object} models.MonthlyBudget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/add [post]
func (h *BudgetHandler) AddBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	notes := req.Notes
	if notes == "" {
		notes = "Budget update"
	}

	budget, err := h.budgetService.AddAmount(userID, today(), req.Amount, notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// SetBudget handles setting the current month's budget total.
// @Summary     Set budget
// @Description Set the current month's budget total. The total can only grow; a lower value is rejected.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "New budget total"
// @Success     200 {object} models.MonthlyBudget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget reduction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [put]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.SetBudget(userID, today(), req.TotalBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetOverview handles retrieving the 12-month budget overview.
// @Summary     Get monthly overview
// @Description Get budget vs expense data for the last 12 months, newest first
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.MonthOverview "Monthly overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/overview [get]
func (h *BudgetHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.budgetService.MonthlyOverview(userID, today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview})
}

// GetMonthDetail handles retrieving the drill-down view for one month.
// @Summary     Get month detail
// @Description Get the budget, history, and transactions for a single month identified by a YYYY-MM key
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key path string true "Month key (YYYY-MM)"
// @Success     200 {object} services.MonthDetail "Month detail"
// @Failure     400 {object} ErrorResponse "Invalid month key"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/months/{key} [get]
func (h *BudgetHandler) GetMonthDetail(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.budgetService.MonthDetail(userID, c.Param("key"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
