package models

import "time"

// Transaction represents an immutable external financial event. Amounts are
// signed: negative values are inflows. The category column always holds the
// canonical JSON-array encoding produced by category.Encode; it is written
// once at ingestion and never re-inferred at read time.
type Transaction struct {
	Base
	TransactionID  string    `gorm:"uniqueIndex;not null" json:"transaction_id"`
	AccountID      string    `gorm:"index" json:"account_id"`
	Name           string    `json:"name"`
	MerchantName   string    `json:"merchant_name,omitempty"`
	Amount         float64   `gorm:"not null" json:"amount"`
	Date           time.Time `gorm:"index;not null" json:"date"`
	Category       string    `json:"category"`
	PaymentChannel string    `json:"payment_channel"`
	Currency       string    `json:"currency,omitempty"`
}
