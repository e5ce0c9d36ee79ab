package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// ledgerService handles checking and savings balance operations. Balances
// are kept as fixed-point decimals so repeated transfers never accumulate
// binary floating point drift.
type ledgerService struct {
	db           *gorm.DB
	auditService AuditServicer
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, auditService AuditServicer) LedgerServicer {
	return &ledgerService{db: db, auditService: auditService}
}

func (s *ledgerService) loadUser(tx *gorm.DB, username string, forUpdate bool) (*models.User, error) {
	query := tx
	// SELECT ... FOR UPDATE is a Postgres construct; SQLite serializes
	// writers on its own.
	if forUpdate && tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user models.User
	err := query.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// Balances returns the current checking and savings balances.
func (s *ledgerService) Balances(username string) (decimal.Decimal, decimal.Decimal, error) {
	user, err := s.loadUser(s.db, username, false)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return user.Checking, user.Savings, nil
}

// SetChecking overwrites the checking balance.
func (s *ledgerService) SetChecking(username string, balance decimal.Decimal) error {
	return s.setBalance(username, "checking", balance)
}

// SetSavings overwrites the savings balance.
func (s *ledgerService) SetSavings(username string, balance decimal.Decimal) error {
	return s.setBalance(username, "savings", balance)
}

func (s *ledgerService) setBalance(username, column string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return apperrors.ErrNegativeAmount
	}
	user, err := s.loadUser(s.db, username, false)
	if err != nil {
		return err
	}
	if err := s.db.Model(user).Update(column, balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.auditService.Log(username, "set_balance", "ledger", column, "", map[string]any{
		"balance": balance.String(),
	})
	return nil
}

// Deposit adds the amount to the checking balance and returns the new
// balance. Negative amounts are rejected before any row is touched.
func (s *ledgerService) Deposit(username string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, apperrors.ErrNegativeAmount
	}

	var newBalance decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.loadUser(tx, username, true)
		if err != nil {
			return err
		}
		newBalance = user.Checking.Add(amount)
		if err := tx.Model(user).Update("checking", newBalance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.auditService.Log(username, "deposit", "ledger", "checking", "", map[string]any{
		"amount":  amount.String(),
		"balance": newBalance.String(),
	})
	return newBalance, nil
}

// TransferToSavings moves the amount from checking to savings atomically,
// locking the user row for the duration. The transfer fails whole when the
// checking balance cannot cover it.
func (s *ledgerService) TransferToSavings(username string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, apperrors.ErrNegativeAmount
	}

	var checking, savings decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.loadUser(tx, username, true)
		if err != nil {
			return err
		}
		if user.Checking.LessThan(amount) {
			return apperrors.WithContext(apperrors.ErrInsufficientFunds, map[string]any{
				"checking":  user.Checking.String(),
				"requested": amount.String(),
			})
		}
		checking = user.Checking.Sub(amount)
		savings = user.Savings.Add(amount)
		updates := map[string]any{
			"checking": checking,
			"savings":  savings,
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	s.auditService.Log(username, "transfer", "ledger", "savings", "", map[string]any{
		"amount":   amount.String(),
		"checking": checking.String(),
		"savings":  savings.String(),
	})
	return checking, savings, nil
}
