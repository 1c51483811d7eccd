package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pondo/internal/errors"
	"pondo/internal/models"
	"pondo/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	getOrCreateFn     func(userID string, month time.Time) (*models.MonthlyBudget, error)
	addAmountFn       func(userID string, month time.Time, amount decimal.Decimal, notes string) (*models.MonthlyBudget, error)
	setBudgetFn       func(userID string, month time.Time, newTotal decimal.Decimal) (*models.MonthlyBudget, error)
	currentBudgetFn   func(userID string, month time.Time) (*services.BudgetSummary, error)
	monthlyOverviewFn func(userID string, today time.Time) ([]services.MonthOverview, error)
	monthDetailFn     func(userID, monthKey string) (*services.MonthDetail, error)
}

func (m *mockBudgetService) GetOrCreate(userID string, month time.Time) (*models.MonthlyBudget, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(userID, month)
	}
	return &models.MonthlyBudget{}, nil
}

func (m *mockBudgetService) AddAmount(userID string, month time.Time, amount decimal.Decimal, notes string) (*models.MonthlyBudget, error) {
	if m.addAmountFn != nil {
		return m.addAmountFn(userID, month, amount, notes)
	}
	return &models.MonthlyBudget{}, nil
}

func (m *mockBudgetService) SetBudget(userID string, month time.Time, newTotal decimal.Decimal) (*models.MonthlyBudget, error) {
	if m.setBudgetFn != nil {
		return m.setBudgetFn(userID, month, newTotal)
	}
	return &models.MonthlyBudget{}, nil
}

func (m *mockBudgetService) RemainingBudget(_ *gorm.DB, _ string, _ time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *mockBudgetService) CurrentBudget(userID string, month time.Time) (*services.BudgetSummary, error) {
	if m.currentBudgetFn != nil {
		return m.currentBudgetFn(userID, month)
	}
	return &services.BudgetSummary{Budget: &models.MonthlyBudget{}}, nil
}

func (m *mockBudgetService) MonthlyOverview(userID string, today time.Time) ([]services.MonthOverview, error) {
	if m.monthlyOverviewFn != nil {
		return m.monthlyOverviewFn(userID, today)
	}
	return []services.MonthOverview{}, nil
}

func (m *mockBudgetService) MonthDetail(userID, monthKey string) (*services.MonthDetail, error) {
	if m.monthDetailFn != nil {
		return m.monthDetailFn(userID, monthKey)
	}
	return &services.MonthDetail{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/budgets/current", handler.GetCurrentBudget)
	auth.POST("/budgets/add", handler.AddBudget)
	auth.PUT("/budgets", handler.SetBudget)
	auth.GET("/budgets/overview", handler.GetOverview)
	auth.GET("/budgets/months/:key", handler.GetMonthDetail)
	return r
}

func TestBudgetHandler_GetCurrentBudget(t *testing.T) {
	t.Run("returns 200 with summary", func(t *testing.T) {
		svc := &mockBudgetService{
			currentBudgetFn: func(_ string, _ time.Time) (*services.BudgetSummary, error) {
				return &services.BudgetSummary{
					Budget:          &models.MonthlyBudget{TotalBudget: decimal.RequireFromString("5000")},
					TotalExpenses:   decimal.RequireFromString("1200"),
					RemainingBudget: decimal.RequireFromString("3800"),
				}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/current", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["remaining_budget"] != "3800" {
			t.Errorf("expected remaining 3800, got %v", result["remaining_budget"])
		}
	})
}

func TestBudgetHandler_AddBudget(t *testing.T) {
	t.Run("returns 200 and passes notes", func(t *testing.T) {
		var capturedNotes string
		var capturedAmount decimal.Decimal
		svc := &mockBudgetService{
			addAmountFn: func(_ string, _ time.Time, amount decimal.Decimal, notes string) (*models.MonthlyBudget, error) {
				capturedAmount = amount
				capturedNotes = notes
				return &models.MonthlyBudget{TotalBudget: amount}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/add", `{"amount":"2500.00","notes":"Mid-month top up"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !capturedAmount.Equal(decimal.RequireFromString("2500.00")) {
			t.Errorf("expected amount 2500.00, got %v", capturedAmount)
		}
		if capturedNotes != "Mid-month top up" {
			t.Errorf("unexpected notes %q", capturedNotes)
		}
	})

	t.Run("defaults notes when omitted", func(t *testing.T) {
		var capturedNotes string
		svc := &mockBudgetService{
			addAmountFn: func(_ string, _ time.Time, amount decimal.Decimal, notes string) (*models.MonthlyBudget, error) {
				capturedNotes = notes
				return &models.MonthlyBudget{TotalBudget: amount}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		doRequest(r, "POST", "/budgets/add", `{"amount":"2500.00"}`)

		if capturedNotes != "Budget update" {
			t.Errorf("expected default notes, got %q", capturedNotes)
		}
	})

	t.Run("returns 400 on non-positive amount", func(t *testing.T) {
		svc := &mockBudgetService{
			addAmountFn: func(_ string, _ time.Time, _ decimal.Decimal, _ string) (*models.MonthlyBudget, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/add", `{"amount":"-10"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestBudgetHandler_SetBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			setBudgetFn: func(_ string, _ time.Time, newTotal decimal.Decimal) (*models.MonthlyBudget, error) {
				return &models.MonthlyBudget{TotalBudget: newTotal}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets", `{"total_budget":"7500.00"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["total_budget"] != "7500" {
			t.Errorf("expected total 7500, got %v", budget["total_budget"])
		}
	})

	t.Run("returns 400 on reduction", func(t *testing.T) {
		svc := &mockBudgetService{
			setBudgetFn: func(_ string, _ time.Time, _ decimal.Decimal) (*models.MonthlyBudget, error) {
				return nil, apperrors.ErrBudgetReduce
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets", `{"total_budget":"100.00"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_REDUCE_FORBIDDEN")
	})

	t.Run("returns 400 on missing total", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetOverview(t *testing.T) {
	svc := &mockBudgetService{
		monthlyOverviewFn: func(_ string, _ time.Time) ([]services.MonthOverview, error) {
			return []services.MonthOverview{
				{MonthKey: "2024-03", MonthName: "March 2024", Budget: decimal.RequireFromString("3000")},
				{MonthKey: "2024-02", MonthName: "February 2024"},
			}, nil
		},
	}
	handler := NewBudgetHandler(svc)
	r := setupBudgetRouter(handler)

	rec := doRequest(r, "GET", "/budgets/overview", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	overview := parseJSON(t, rec)["overview"].([]interface{})
	if len(overview) != 2 {
		t.Fatalf("expected 2 months, got %d", len(overview))
	}
	first := overview[0].(map[string]interface{})
	if first["month_key"] != "2024-03" {
		t.Errorf("expected 2024-03 first, got %v", first["month_key"])
	}
}

func TestBudgetHandler_GetMonthDetail(t *testing.T) {
	t.Run("returns 200 with detail", func(t *testing.T) {
		svc := &mockBudgetService{
			monthDetailFn: func(_, monthKey string) (*services.MonthDetail, error) {
				return &services.MonthDetail{
					MonthName: "January 2024",
					Budget:    decimal.RequireFromString("5000"),
				}, nil
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/months/2024-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["month_name"] != "January 2024" {
			t.Errorf("expected January 2024, got %v", result["month_name"])
		}
	})

	t.Run("returns 400 on invalid key", func(t *testing.T) {
		svc := &mockBudgetService{
			monthDetailFn: func(_, monthKey string) (*services.MonthDetail, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month key")
			},
		}
		handler := NewBudgetHandler(svc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/months/January-2024", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
