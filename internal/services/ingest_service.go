package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/category"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/models"
	"pennywise/internal/plaidlink"
)

// ingestWindowDays is how far back each sync pulls from the aggregator.
// Rows already stored are skipped, so overlapping windows are harmless.
const ingestWindowDays = 30

// ingestService pulls transactions from the bank aggregator into local
// storage and reruns the spending pipeline for the affected user.
type ingestService struct {
	db              *gorm.DB
	aggregator      plaidlink.Client
	spendingService SpendingServicer
	timeout         time.Duration
}

// NewIngestService creates a new IngestServicer.
func NewIngestService(db *gorm.DB, aggregator plaidlink.Client, spendingService SpendingServicer, timeout time.Duration) IngestServicer {
	return &ingestService{
		db:              db,
		aggregator:      aggregator,
		spendingService: spendingService,
		timeout:         timeout,
	}
}

// SyncUser pulls the user's recent transactions and stores the ones not yet
// seen. Returns the number of newly stored rows.
func (s *ingestService) SyncUser(ctx context.Context, username string) (int, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.ErrUserNotFound
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.sync(ctx, &user)
}

// SyncItem resolves an aggregator item ID to its linked user and syncs them.
// Webhook deliveries identify the account this way.
func (s *ingestService) SyncItem(ctx context.Context, itemID string) (int, error) {
	var user models.User
	err := s.db.Where("item_id = ?", itemID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.ErrUserNotFound
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.sync(ctx, &user)
}

// SyncAll syncs every user with a linked bank account. A failing user is
// logged and skipped so one broken link does not stall the rest.
func (s *ingestService) SyncAll(ctx context.Context) (int, error) {
	var users []models.User
	err := s.db.Where("access_token <> ''").Find(&users).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := 0
	for i := range users {
		stored, err := s.sync(ctx, &users[i])
		if err != nil {
			logger.Get().Errorw("sync failed",
				"username", users[i].Username,
				"error", err,
			)
			continue
		}
		total += stored
	}
	return total, nil
}

func (s *ingestService) sync(ctx context.Context, user *models.User) (int, error) {
	if user.AccessToken == "" {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "user has no linked bank account")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -ingestWindowDays)
	external, err := s.aggregator.FetchTransactions(ctx, user.AccessToken, start, end)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, ext := range external {
		var count int64
		err := s.db.Model(&models.Transaction{}).
			Where("transaction_id = ?", ext.TransactionID).
			Count(&count).Error
		if err != nil {
			return stored, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			continue
		}

		transaction := models.Transaction{
			TransactionID:  ext.TransactionID,
			AccountID:      ext.AccountID,
			Name:           ext.Name,
			MerchantName:   ext.MerchantName,
			Amount:         ext.Amount,
			Date:           ext.Date,
			Category:       category.Encode(ext.Category),
			PaymentChannel: ext.PaymentChannel,
			Currency:       ext.Currency,
		}
		if err := s.db.Create(&transaction).Error; err != nil {
			return stored, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		stored++
	}

	if stored > 0 {
		if err := s.spendingService.RefreshAll(user.Username); err != nil {
			return stored, err
		}
	}

	logger.Get().Infow("sync completed",
		"username", user.Username,
		"fetched", len(external),
		"stored", stored,
	)
	return stored, nil
}
