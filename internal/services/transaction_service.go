package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/category"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/uuid"
)

// alertAmountThreshold is the outflow size above which a manually added
// transaction immediately raises the user's fraud alert flag.
const alertAmountThreshold = 100.0

// manualAccountID marks transactions entered by hand rather than pulled
// from the bank aggregator.
const manualAccountID = "manual"

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	spendingService SpendingServicer
	auditService    AuditServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, spendingService SpendingServicer, auditService AuditServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		spendingService: spendingService,
		auditService:    auditService,
	}
}

// ListRecent returns transactions from the last 30 days, newest first.
func (s *transactionService) ListRecent(page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	query := s.db.Model(&models.Transaction{}).Where("date >= ?", cutoff)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := query.
		Order("date desc, id desc").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &response, nil
}

// Add stores a manually entered transaction and then, in the same database
// transaction, reruns the user's spending pipeline so the stored predictions,
// actuals, and goal allocation reflect the new row. Outflows above the alert
// threshold additionally raise the user's fraud alert flag.
func (s *transactionService) Add(input AddTransactionInput) (*models.Transaction, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction name is required")
	}
	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}

	var user models.User
	err := s.db.Where("username = ?", input.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	transaction := &models.Transaction{
		TransactionID:  uuid.New(),
		AccountID:      manualAccountID,
		Name:           input.Name,
		MerchantName:   input.MerchantName,
		Amount:         input.Amount,
		Date:           input.Date,
		Category:       category.Encode(input.Category),
		PaymentChannel: input.PaymentChannel,
		Currency:       input.Currency,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.spendingService.RefreshAllWithDB(tx, input.Username); err != nil {
			return err
		}
		if transaction.Amount > alertAmountThreshold {
			updates := map[string]any{
				"is_alert":             true,
				"alert_transaction_id": transaction.TransactionID,
			}
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Log(input.Username, "create", "transaction", transaction.TransactionID, "", map[string]any{
		"name":   transaction.Name,
		"amount": transaction.Amount,
	})
	return transaction, nil
}

// Delete removes a transaction by its external transaction ID.
func (s *transactionService) Delete(transactionID string) error {
	result := s.db.Where("transaction_id = ?", transactionID).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// Latest returns the most recently stored transaction.
func (s *transactionService) Latest() (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Order("id desc").First(&transaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
