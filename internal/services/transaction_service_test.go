package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/category"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func TestAddTransaction(t *testing.T) {
	t.Run("stores_canonical_category_and_refreshes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		spendingSvc := NewSpendingService(db)
		svc := NewTransactionService(db, spendingSvc, NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		// A prior day of spending so the refresh has two distinct days.
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{
			Amount: 30, Date: testutil.MonthDay(1), Categories: []string{category.Food},
		})

		transaction, err := svc.Add(AddTransactionInput{
			Username: user.Username,
			Name:     "Burger Palace",
			Amount:   50,
			Date:     testutil.MonthDay(2),
			Category: []string{category.Food},
		})
		testutil.AssertNoError(t, err)

		if transaction.TransactionID == "" {
			t.Error("expected a generated transaction ID")
		}
		if transaction.Category != `["Food and Drink"]` {
			t.Errorf("category = %q, want canonical JSON array", transaction.Category)
		}

		// The cascade must have persisted the month-to-date total.
		actual, err := spendingSvc.StoredValue(user.Username, category.Food, "actual")
		testutil.AssertNoError(t, err)
		if actual != 80 {
			t.Errorf("actual = %v, want 80", actual)
		}
		predicted, err := spendingSvc.StoredValue(user.Username, category.Food, "predicted")
		testutil.AssertNoError(t, err)
		if predicted == 0 {
			t.Error("expected the cascade to store a prediction")
		}
	})

	t.Run("large_amount_raises_alert", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		transaction, err := svc.Add(AddTransactionInput{
			Username: user.Username,
			Name:     "Suspicious Purchase",
			Amount:   150,
			Date:     testutil.MonthDay(1),
			Category: []string{category.Travel},
		})
		testutil.AssertNoError(t, err)

		var stored models.User
		testutil.AssertNoError(t, db.Where("username = ?", user.Username).First(&stored).Error)
		if !stored.IsAlert {
			t.Error("expected alert flag for amount above threshold")
		}
		if stored.AlertTransactionID != transaction.TransactionID {
			t.Errorf("alert transaction = %q, want %q", stored.AlertTransactionID, transaction.TransactionID)
		}
	})

	t.Run("threshold_amount_does_not_alert", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Add(AddTransactionInput{
			Username: user.Username,
			Name:     "Exactly At Threshold",
			Amount:   100,
			Date:     testutil.MonthDay(1),
		})
		testutil.AssertNoError(t, err)

		var stored models.User
		testutil.AssertNoError(t, db.Where("username = ?", user.Username).First(&stored).Error)
		if stored.IsAlert {
			t.Error("amount of exactly 100 must not raise an alert")
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))

		_, err := svc.Add(AddTransactionInput{Username: "ghost", Name: "x", Amount: 1})
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("pipeline_failure_rolls_back_the_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, &failingSpendingService{}, NewAuditService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Add(AddTransactionInput{
			Username: user.Username,
			Name:     "Doomed Purchase",
			Amount:   150,
			Date:     testutil.MonthDay(1),
		})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("count = %d, want the created row rolled back", count)
		}

		var stored models.User
		testutil.AssertNoError(t, db.Where("username = ?", user.Username).First(&stored).Error)
		if stored.IsAlert {
			t.Error("a failed cascade must not leave the alert flag set")
		}
	})
}

// failingSpendingService fails the refresh stage of the add-transaction
// cascade. Every other method is unreachable in these tests.
type failingSpendingService struct {
	SpendingServicer
}

func (f *failingSpendingService) RefreshAllWithDB(tx *gorm.DB, username string) error {
	return apperrors.ErrInternalServer
}

func TestListRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))
	testutil.CreateTestUser(t, db)

	now := time.Now().UTC()
	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 10, Date: now.AddDate(0, 0, -1)})
	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 20, Date: now.AddDate(0, 0, -5)})
	// Outside the 30-day window.
	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 30, Date: now.AddDate(0, 0, -45)})

	response, err := svc.ListRecent(pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if response.TotalItems != 2 {
		t.Errorf("total = %d, want 2", response.TotalItems)
	}
	if len(response.Data) != 2 {
		t.Fatalf("rows = %d, want 2", len(response.Data))
	}
	if response.Data[0].Amount != 10 {
		t.Errorf("first row amount = %v, want newest first", response.Data[0].Amount)
	}
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("deletes_by_external_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))
		transaction := testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{})

		testutil.AssertNoError(t, svc.Delete(transaction.TransactionID))

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("count = %d, want 0", count)
		}
	})

	t.Run("unknown_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))

		err := svc.Delete("missing")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestLatest(t *testing.T) {
	t.Run("returns_most_recent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))

		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 1})
		last := testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 2})

		latest, err := svc.Latest()
		testutil.AssertNoError(t, err)
		if latest.TransactionID != last.TransactionID {
			t.Errorf("latest = %q, want %q", latest.TransactionID, last.TransactionID)
		}
	})

	t.Run("empty_table", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, NewSpendingService(db), NewAuditService(db))

		_, err := svc.Latest()
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
