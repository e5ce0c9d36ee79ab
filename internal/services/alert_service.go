package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pennywise/internal/category"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/fraud"
	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// alertService runs the fraud-alert workflow: encode the latest transaction,
// score it, and flag the user when the classifier reports fraud.
type alertService struct {
	db                 *gorm.DB
	transactionService TransactionServicer
	encoders           *fraud.Encoders
	classifier         fraud.Classifier
	auditService       AuditServicer
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB, transactionService TransactionServicer, encoders *fraud.Encoders, classifier fraud.Classifier, auditService AuditServicer) AlertServicer {
	return &alertService{
		db:                 db,
		transactionService: transactionService,
		encoders:           encoders,
		classifier:         classifier,
		auditService:       auditService,
	}
}

// Evaluate encodes the most recent transaction, scores it, and on a fraud
// verdict persists the alert flag on the named user.
func (s *alertService) Evaluate(ctx context.Context, username string) (*AlertResult, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	transaction, err := s.transactionService.Latest()
	if err != nil {
		return nil, err
	}

	row, err := s.encode(transaction)
	if err != nil {
		return nil, err
	}

	class, err := s.classifier.Score(ctx, row)
	if err != nil {
		return nil, err
	}

	result := &AlertResult{
		Flagged:       class == 1,
		TransactionID: transaction.TransactionID,
		Merchant:      transaction.MerchantName,
		Amount:        transaction.Amount,
	}
	if !result.Flagged {
		return result, nil
	}

	updates := map[string]any{
		"is_alert":             true,
		"alert_transaction_id": transaction.TransactionID,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Warnw("transaction flagged as potential fraud",
		"username", username,
		"transaction_id", transaction.TransactionID,
		"amount", transaction.Amount,
	)
	s.auditService.Log(username, "flag", "alert", transaction.TransactionID, "", map[string]any{
		"merchant": transaction.MerchantName,
		"amount":   transaction.Amount,
	})
	return result, nil
}

// encode maps a transaction onto the classifier's feature contract. The hour
// comes from the ingestion timestamp; calendar features come from the
// transaction date.
func (s *alertService) encode(transaction *models.Transaction) (fraud.FeatureRow, error) {
	merchant, err := s.encoders.Transform(fraud.ColumnMerchant, transaction.MerchantName)
	if err != nil {
		return fraud.FeatureRow{}, err
	}
	categoryCode, err := s.encoders.Transform(fraud.ColumnCategory, category.First(transaction.Category))
	if err != nil {
		return fraud.FeatureRow{}, err
	}
	transNum, err := s.encoders.Transform(fraud.ColumnTransNum, transaction.TransactionID)
	if err != nil {
		return fraud.FeatureRow{}, err
	}

	// Weekday is 0 for Monday through 6 for Sunday, matching the encoding
	// used when the model was trained.
	weekday := (int(transaction.Date.Weekday()) + 6) % 7

	return fraud.FeatureRow{
		Merchant:   merchant,
		Category:   categoryCode,
		Amount:     transaction.Amount,
		TransNum:   transNum,
		Hour:       transaction.CreatedAt.Hour(),
		DayOfWeek:  weekday,
		DayOfMonth: transaction.Date.Day(),
		Month:      int(transaction.Date.Month()),
	}, nil
}

// Status reports whether the user currently has an active alert.
func (s *alertService) Status(username string) (bool, error) {
	user, err := s.findUser(username)
	if err != nil {
		return false, err
	}
	return user.IsAlert, nil
}

// Resolve records the operator's verdict on an active alert and clears the
// flag. Action "yes" confirms the transaction as legitimate; "no" reports it.
func (s *alertService) Resolve(username, action string) (string, error) {
	user, err := s.findUser(username)
	if err != nil {
		return "", err
	}

	var status string
	switch action {
	case "yes":
		status = "verified"
	case "no":
		status = "reported"
	default:
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "action must be yes or no")
	}

	transactionID := user.AlertTransactionID
	updates := map[string]any{
		"is_alert":             false,
		"alert_transaction_id": "",
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.auditService.Log(username, "resolve", "alert", transactionID, "", map[string]any{
		"action": action,
		"status": status,
	})
	return status, nil
}

func (s *alertService) findUser(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}
