package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/forecast"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Login(username, password string) (*models.User, bool, error)
	GetByUsername(username string) (*models.User, error)
	SetLinkCredentials(username, accessToken, itemID string) error
	SetGoal(username string, amount float64, timeMonths int) (float64, error)
	GetGoal(username string) (*SavingGoal, error)
	UpdateTopSpenders(username string) (*TopSpenders, error)
	UpdateDayPaid(username string) (int, error)
}

// SavingGoal describes a user's configured saving goal. Nil is returned when
// no goal has been set.
type SavingGoal struct {
	Amount     float64 `json:"amount"`
	TimeMonths int     `json:"time_months"`
	SavingGoal float64 `json:"saving_goal"`
}

// TopSpenders holds the two most frequent spending categories.
type TopSpenders struct {
	TopSpender       string `json:"top_spender"`
	Top2Spender      string `json:"top2_spender"`
	TopSpenderCount  int    `json:"top_spender_count"`
	Top2SpenderCount int    `json:"top2_spender_count"`
}

// AddTransactionInput carries the fields of a manually added transaction.
type AddTransactionInput struct {
	Username       string
	Name           string
	MerchantName   string
	Amount         float64
	Date           time.Time
	Category       []string
	PaymentChannel string
	Currency       string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	ListRecent(page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	Add(input AddTransactionInput) (*models.Transaction, error)
	Delete(transactionID string) error
	Latest() (*models.Transaction, error)
}

// Allocation is the result of distributing the monthly spend limit across
// categories in proportion to their predicted totals.
type Allocation struct {
	SpendLimit     float64            `json:"spend_limit"`
	TotalPredicted float64            `json:"total_predicted"`
	Ratio          float64            `json:"ratio"`
	Goals          map[string]float64 `json:"goals"`
}

// Prediction is a month-end spending estimate for one category. OK is false
// when the series had insufficient data; Value must then be ignored, not
// read as zero.
type Prediction struct {
	Value float64 `json:"predicted_spending"`
	OK    bool    `json:"ok"`
}

// SpendingServicer defines the contract for the per-category spending
// pipeline: bucketing, prediction, actuals, and adaptive goal allocation.
type SpendingServicer interface {
	MonthlySeries(username, categoryLabel string) ([]forecast.Point, error)
	StorePredicted(username, categoryLabel string) (Prediction, error)
	StoreActual(username, categoryLabel string) (float64, bool, error)
	StoredValue(username, categoryLabel, kind string) (float64, error)
	AdaptiveAllocate(username string) (*Allocation, error)
	TotalPredicted(username string) (float64, error)
	RefreshAll(username string) error
	RefreshAllWithDB(tx *gorm.DB, username string) error
}

// LedgerServicer defines the contract for checking/savings balance operations.
type LedgerServicer interface {
	Balances(username string) (checking, savings decimal.Decimal, err error)
	SetChecking(username string, balance decimal.Decimal) error
	SetSavings(username string, balance decimal.Decimal) error
	Deposit(username string, amount decimal.Decimal) (decimal.Decimal, error)
	TransferToSavings(username string, amount decimal.Decimal) (checking, savings decimal.Decimal, err error)
}

// AlertResult describes the outcome of a classifier evaluation.
type AlertResult struct {
	Flagged       bool    `json:"flagged"`
	TransactionID string  `json:"transaction_id"`
	Merchant      string  `json:"merchant,omitempty"`
	Amount        float64 `json:"amount"`
}

// AlertServicer defines the contract for the fraud-alert workflow.
type AlertServicer interface {
	Evaluate(ctx context.Context, username string) (*AlertResult, error)
	Status(username string) (bool, error)
	Resolve(username, action string) (string, error)
}

// LinkServicer defines the contract for the bank-aggregator link handshake.
type LinkServicer interface {
	CreateLinkToken(ctx context.Context, username string) (string, error)
	ExchangePublicToken(ctx context.Context, username, publicToken string) (string, error)
}

// IngestServicer defines the contract for pulling transactions from the
// bank aggregator into local storage.
type IngestServicer interface {
	SyncUser(ctx context.Context, username string) (int, error)
	SyncItem(ctx context.Context, itemID string) (int, error)
	SyncAll(ctx context.Context) (int, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(username, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
