package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"pondo/internal/models"
	"pondo/internal/pagination"
	"pondo/internal/testutil"
)

func newPaymentServiceTest(t *testing.T) (PaymentServicer, *gorm.DB, *models.User, func()) {
	db := testutil.SetupTestDB(t)
	budgetSvc := NewBudgetService(db)
	categorySvc := NewCategoryService(db, budgetSvc)
	svc := NewPaymentService(db, categorySvc, budgetSvc)
	user := testutil.CreateTestUser(t, db)
	return svc, db, user, func() { testutil.TeardownTestDB(t, db) }
}

func TestRecordPayment_Full(t *testing.T) {
	t.Run("exact_amount_marks_category_paid", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		result, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1500"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
		}, today)
		testutil.AssertNoError(t, err)

		if result.Category.PaymentStatus != models.PaymentStatusPaid {
			t.Errorf("expected category paid, got %s", result.Category.PaymentStatus)
		}
		testutil.AssertDecimalEqual(t, "1500", result.Category.Amount)
		testutil.AssertDecimalEqual(t, "1500", result.Payment.AmountPaid)

		if result.Transaction.Title != "Full Payment for "+category.Name {
			t.Errorf("unexpected transaction title %q", result.Transaction.Title)
		}
		if result.Transaction.Description != "Full Payment - The payment was processed through cash." {
			t.Errorf("unexpected transaction description %q", result.Transaction.Description)
		}
		if !result.Transaction.Date.Equal(today) {
			t.Errorf("expected transaction dated %s, got %s", today, result.Transaction.Date)
		}
	})

	t.Run("amount_mismatch_is_rejected", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1400"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
		}, today)
		testutil.AssertAppError(t, err, "PAYMENT_AMOUNT_MISMATCH")

		_, err = svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1600"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
		}, today)
		testutil.AssertAppError(t, err, "PAYMENT_AMOUNT_MISMATCH")
	})
}

func TestRecordPayment_Partial(t *testing.T) {
	t.Run("reduces_category_amount", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		result, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "600.50"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypePartial,
		}, today)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, "899.50", result.Category.Amount)
		if result.Category.PaymentStatus != models.PaymentStatusUnpaid {
			t.Errorf("expected category still unpaid, got %s", result.Category.PaymentStatus)
		}
		if !result.Category.DueDate.Equal(category.DueDate) {
			t.Errorf("expected due date unchanged, got %s", result.Category.DueDate.Format("2006-01-02"))
		}
		if result.Transaction.Title != "Partial Payment for "+category.Name {
			t.Errorf("unexpected transaction title %q", result.Transaction.Title)
		}

		var persisted models.Category
		if err := db.First(&persisted, "id = ?", category.ID).Error; err != nil {
			t.Fatalf("failed to reload category: %v", err)
		}
		testutil.AssertDecimalEqual(t, "899.50", persisted.Amount)
	})

	t.Run("amount_equal_to_remaining_is_rejected", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1500"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypePartial,
		}, today)
		testutil.AssertAppError(t, err, "PAYMENT_AMOUNT_MISMATCH")
	})

	t.Run("two_partials_then_full_settles", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		pay := func(amount string, paymentType models.PaymentType) *PaymentResult {
			result, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
				Amount: testutil.Dec(t, amount),
				Method: models.PaymentMethodCash,
				Type:   paymentType,
			}, today)
			testutil.AssertNoError(t, err)
			return result
		}

		pay("500", models.PaymentTypePartial)
		pay("400", models.PaymentTypePartial)
		result := pay("600", models.PaymentTypeFull)

		if result.Category.PaymentStatus != models.PaymentStatusPaid {
			t.Errorf("expected category paid after settling, got %s", result.Category.PaymentStatus)
		}

		var paymentCount int64
		if err := db.Model(&models.Payment{}).Where("category_id = ?", category.ID).Count(&paymentCount).Error; err != nil {
			t.Fatalf("failed to count payments: %v", err)
		}
		if paymentCount != 3 {
			t.Errorf("expected 3 payment rows, got %d", paymentCount)
		}
	})
}

func TestRecordPayment_Gcash(t *testing.T) {
	t.Run("requires_transaction_id_and_account", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount:        testutil.Dec(t, "1500"),
			Method:        models.PaymentMethodGcash,
			Type:          models.PaymentTypeFull,
			TransactionID: "REF123",
		}, today)
		testutil.AssertAppError(t, err, "GCASH_DETAILS_REQUIRED")

		_, err = svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount:           testutil.Dec(t, "1500"),
			Method:           models.PaymentMethodGcash,
			Type:             models.PaymentTypeFull,
			GcashAccountUsed: "09171234567",
		}, today)
		testutil.AssertAppError(t, err, "GCASH_DETAILS_REQUIRED")
	})

	t.Run("description_includes_reference_details", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		result, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount:           testutil.Dec(t, "1500"),
			Method:           models.PaymentMethodGcash,
			Type:             models.PaymentTypeFull,
			TransactionID:    "REF123",
			GcashAccountUsed: "09171234567",
		}, today)
		testutil.AssertNoError(t, err)

		want := "Full Payment - The payment was processed through GCash (Account No. 09171234567) under transaction number REF123."
		if result.Transaction.Description != want {
			t.Errorf("unexpected description %q", result.Transaction.Description)
		}
	})
}

func TestRecordPayment_BudgetGuard(t *testing.T) {
	t.Run("rejection_leaves_no_partial_state", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "1000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1500"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
		}, today)
		testutil.AssertAppError(t, err, "INSUFFICIENT_BUDGET")

		var paymentCount, txCount int64
		if err := db.Model(&models.Payment{}).Count(&paymentCount).Error; err != nil {
			t.Fatalf("failed to count payments: %v", err)
		}
		if err := db.Model(&models.Transaction{}).Count(&txCount).Error; err != nil {
			t.Fatalf("failed to count transactions: %v", err)
		}
		if paymentCount != 0 || txCount != 0 {
			t.Errorf("expected no rows after rejection, got %d payments and %d transactions", paymentCount, txCount)
		}

		var persisted models.Category
		if err := db.First(&persisted, "id = ?", category.ID).Error; err != nil {
			t.Fatalf("failed to reload category: %v", err)
		}
		if persisted.PaymentStatus != models.PaymentStatusUnpaid {
			t.Errorf("expected category untouched, got %s", persisted.PaymentStatus)
		}
	})

	t.Run("guard_uses_month_of_payment_date", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		// Budget exists for January only; a payment dated in February must
		// be checked against February's (missing, so zero) envelope.
		testutil.CreateTestBudget(t, db, user.ID, testutil.Date(2024, time.January, 1), testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.February, 10))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1500"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
			Date:   testutil.Date(2024, time.February, 5),
		}, testutil.Date(2024, time.January, 31))
		testutil.AssertAppError(t, err, "INSUFFICIENT_BUDGET")
	})

	t.Run("payment_consuming_exact_remaining_is_allowed", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "1500"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1500"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
		}, today)
		testutil.AssertNoError(t, err)
	})
}

func TestRecordPayment_Validation(t *testing.T) {
	t.Run("zero_amount", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "0"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
		}, today)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_payment_type", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		today := testutil.Date(2024, time.January, 15)
		testutil.CreateTestBudget(t, db, user.ID, today, testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1500"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentType("installment"),
		}, today)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_category_is_not_found", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		other := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, other.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
			Amount: testutil.Dec(t, "1500"),
			Method: models.PaymentMethodCash,
			Type:   models.PaymentTypeFull,
		}, testutil.Date(2024, time.January, 15))
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetCategoryPayments(t *testing.T) {
	t.Run("newest_first", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		testutil.CreateTestBudget(t, db, user.ID, testutil.Date(2024, time.January, 1), testutil.Dec(t, "5000"))
		category := testutil.CreateTestCategory(t, db, user.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		for _, day := range []int{5, 10} {
			_, err := svc.RecordPayment(user.ID, category.ID, PaymentDraft{
				Amount: testutil.Dec(t, "100"),
				Method: models.PaymentMethodCash,
				Type:   models.PaymentTypePartial,
				Date:   testutil.Date(2024, time.January, day),
			}, testutil.Date(2024, time.January, day))
			testutil.AssertNoError(t, err)
		}

		result, err := svc.GetCategoryPayments(user.ID, category.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Fatalf("expected 2 payments, got %d", result.TotalItems)
		}
		if !result.Data[0].PaymentDate.After(result.Data[1].PaymentDate) {
			t.Error("expected payments ordered newest first")
		}
	})

	t.Run("foreign_category_is_not_found", func(t *testing.T) {
		svc, db, user, teardown := newPaymentServiceTest(t)
		defer teardown()

		other := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, other.ID, testutil.Dec(t, "1500"), testutil.Date(2024, time.January, 31))

		_, err := svc.GetCategoryPayments(user.ID, category.ID, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
