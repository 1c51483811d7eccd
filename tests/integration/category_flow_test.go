package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestToggleFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "toggler@example.com", "password123")

	app.setBudget(t, token, "5000.00")
	categoryID := app.createCategory(t, token, "Water", "800.00", 3)
	togglePath := fmt.Sprintf("/api/v1/categories/%s/toggle", categoryID)

	// Unpaid -> paid settles the bill and emits an expense transaction.
	rec := app.request("POST", togglePath, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	category := result["category"].(map[string]interface{})
	if category["payment_status"] != "paid" {
		t.Errorf("expected status paid, got %v", category["payment_status"])
	}
	transaction, ok := result["transaction"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected transaction in toggle response: %s", rec.Body.String())
	}
	if transaction["title"] != "Payment for Water" {
		t.Errorf("unexpected transaction title: %v", transaction["title"])
	}

	rec = app.request("GET", "/api/v1/budgets/current", "", token)
	result = parseJSON(t, rec)
	if result["remaining_budget"] != "4200" {
		t.Errorf("expected remaining 4200, got %v", result["remaining_budget"])
	}

	// Paid -> unpaid is a correction: the status clears but the expense stays.
	rec = app.request("POST", togglePath, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle back failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	category = result["category"].(map[string]interface{})
	if category["payment_status"] != "unpaid" {
		t.Errorf("expected status unpaid, got %v", category["payment_status"])
	}
	if _, hasTransaction := result["transaction"]; hasTransaction {
		t.Error("expected no transaction when toggling back to unpaid")
	}

	rec = app.request("GET", "/api/v1/budgets/current", "", token)
	result = parseJSON(t, rec)
	if result["remaining_budget"] != "4200" {
		t.Errorf("expected remaining still 4200 after untoggle, got %v", result["remaining_budget"])
	}
}

func TestToggleInsufficientBudgetFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "broke@example.com", "password123")

	app.setBudget(t, token, "500.00")
	categoryID := app.createCategory(t, token, "Rent", "9000.00", 3)

	rec := app.request("POST", fmt.Sprintf("/api/v1/categories/%s/toggle", categoryID), "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "INSUFFICIENT_BUDGET")

	// The category stays unpaid.
	rec = app.request("GET", "/api/v1/categories/"+categoryID, "", token)
	result := parseJSON(t, rec)
	category := result["category"].(map[string]interface{})
	if category["payment_status"] != "unpaid" {
		t.Errorf("expected status unpaid, got %v", category["payment_status"])
	}
}

func TestCategoryLifecycleFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "lifecycle@example.com", "password123")

	categoryID := app.createCategory(t, token, "Netflix", "549.00", 2)

	// Update the name and amount.
	rec := app.request("PUT", "/api/v1/categories/"+categoryID,
		`{"name":"Streaming","amount":"649.00"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	category := result["category"].(map[string]interface{})
	if category["name"] != "Streaming" {
		t.Errorf("expected updated name, got %v", category["name"])
	}
	if category["amount"] != "649" {
		t.Errorf("expected updated amount, got %v", category["amount"])
	}

	// Due in two days: listed by the due-soon endpoint.
	rec = app.request("GET", "/api/v1/categories/due-soon", "", token)
	result = parseJSON(t, rec)
	dueSoon := result["categories"].([]interface{})
	if len(dueSoon) != 1 {
		t.Fatalf("expected 1 due-soon category, got %d", len(dueSoon))
	}

	// Delete removes it from listings.
	rec = app.request("DELETE", "/api/v1/categories/"+categoryID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/categories", "", token)
	result = parseJSON(t, rec)
	if result["total_items"].(float64) != 0 {
		t.Errorf("expected 0 categories after delete, got %v", result["total_items"])
	}
}
