package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/category"
	"pennywise/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserNamed(t, db, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserNamed creates a user with the given username.
func CreateTestUserNamed(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Password: "password123",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// TransactionOpts overrides fixture defaults for a test transaction.
type TransactionOpts struct {
	Amount       float64
	Date         time.Time
	Categories   []string
	MerchantName string
	Name         string
}

// CreateTestTransaction creates a transaction with the given overrides.
// Defaults: a 10.00 food purchase dated today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, opts TransactionOpts) *models.Transaction {
	t.Helper()

	if opts.Amount == 0 {
		opts.Amount = 10
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now().UTC()
	}
	if opts.Categories == nil {
		opts.Categories = []string{category.Food}
	}
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("Test Purchase %d", nextID())
	}

	transaction := &models.Transaction{
		TransactionID:  fmt.Sprintf("test-txn-%d", nextID()),
		AccountID:      "test-account",
		Name:           opts.Name,
		MerchantName:   opts.MerchantName,
		Amount:         opts.Amount,
		Date:           opts.Date,
		Category:       category.Encode(opts.Categories),
		PaymentChannel: "online",
		Currency:       "USD",
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// MonthDay returns a UTC timestamp on the given day of the current month.
// Spending-series tests need dates that land inside the month window.
func MonthDay(day int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), day, 12, 0, 0, 0, time.UTC)
}
