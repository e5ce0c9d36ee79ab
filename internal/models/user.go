package models

import "github.com/shopspring/decimal"

// User represents an account holder. Nearly every handler mutates some part
// of this row: the saving goal, the per-category spending snapshots, the
// ledger balances, or the fraud-alert flag.
//
// Passwords are stored as given, without hashing; the upstream data model
// mandates plain-text credential storage.
type User struct {
	Base
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`

	// Bank-aggregator link credentials.
	AccessToken string `json:"-"`
	ItemID      string `gorm:"index" json:"-"`

	// Saving goal: target amount over a number of months, and the derived
	// per-month saving rate.
	GoalAmount *float64 `json:"goal_amount,omitempty"`
	GoalMonths *int     `json:"goal_months,omitempty"`
	SavingGoal *float64 `json:"saving_goal,omitempty"`

	// Ledger balances.
	Checking decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"checking"`
	Savings  decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"savings"`

	// Per-category spending snapshots for the current month.
	FoodSpending                   float64 `json:"food_spending"`
	EntertainmentSpending          float64 `json:"entertainment_spending"`
	TravelSpending                 float64 `json:"travel_spending"`
	FoodSpendingPredicted          float64 `json:"food_spending_predicted"`
	EntertainmentSpendingPredicted float64 `json:"entertainment_spending_predicted"`
	TravelSpendingPredicted        float64 `json:"travel_spending_predicted"`
	FoodSpendingGoal               float64 `json:"food_spending_goal"`
	EntertainmentSpendingGoal      float64 `json:"entertainment_spending_goal"`
	TravelSpendingGoal             float64 `json:"travel_spending_goal"`

	// Frequency-based insights.
	TopSpender  string `json:"top_spender"`
	Top2Spender string `json:"top2_spender"`
	DayPaid     int    `json:"day_paid"`

	// Fraud alert state, cleared by operator acknowledgement.
	IsAlert            bool   `json:"is_alert"`
	AlertTransactionID string `json:"alert_transaction_id,omitempty"`
}
