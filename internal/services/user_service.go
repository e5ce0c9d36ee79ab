package services

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/category"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// Login authenticates a user by username and password. Unknown usernames are
// registered on the spot; the returned bool reports whether a new account was
// created. Passwords are stored and compared as plain text.
func (s *userService) Login(username, password string) (*models.User, bool, error) {
	if username == "" || password == "" {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "username and password are required")
	}

	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username: username,
			Password: password,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &user, true, nil
	}
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.Password != password {
		return nil, false, apperrors.ErrInvalidCredentials
	}
	return &user, false, nil
}

// GetByUsername retrieves a user by username.
func (s *userService) GetByUsername(username string) (*models.User, error) {
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

// SetLinkCredentials stores the aggregator access token and item ID for a user.
func (s *userService) SetLinkCredentials(username, accessToken, itemID string) error {
	user, err := s.GetByUsername(username)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"access_token": accessToken,
		"item_id":      itemID,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetGoal stores an overall saving goal and its horizon, and derives the
// monthly saving rate as amount divided by months. The rate is returned.
func (s *userService) SetGoal(username string, amount float64, timeMonths int) (float64, error) {
	if amount < 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal amount must not be negative")
	}
	if timeMonths <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "time horizon must be at least one month")
	}

	user, err := s.GetByUsername(username)
	if err != nil {
		return 0, err
	}

	savingGoal := amount / float64(timeMonths)
	updates := map[string]any{
		"goal_amount": amount,
		"goal_months": timeMonths,
		"saving_goal": savingGoal,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return savingGoal, nil
}

// GetGoal returns the stored saving goal, or nil when no goal has been set.
func (s *userService) GetGoal(username string) (*SavingGoal, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user.GoalAmount == nil || user.GoalMonths == nil || user.SavingGoal == nil {
		return nil, nil
	}
	return &SavingGoal{
		Amount:     *user.GoalAmount,
		TimeMonths: *user.GoalMonths,
		SavingGoal: *user.SavingGoal,
	}, nil
}

// UpdateTopSpenders counts how often each category label appears across all
// stored transactions, persists the two most frequent on the user, and
// returns them. Ties break toward the label seen first in date order.
func (s *userService) UpdateTopSpenders(username string) (*TopSpenders, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Order("date asc, id asc").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, t := range transactions {
		for _, label := range category.Parse(t.Category) {
			if _, seen := counts[label]; !seen {
				order = append(order, label)
			}
			counts[label]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	result := &TopSpenders{}
	if len(order) > 0 {
		result.TopSpender = order[0]
		result.TopSpenderCount = counts[order[0]]
	}
	if len(order) > 1 {
		result.Top2Spender = order[1]
		result.Top2SpenderCount = counts[order[1]]
	}

	updates := map[string]any{
		"top_spender":  result.TopSpender,
		"top2_spender": result.Top2Spender,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// UpdateDayPaid finds the first inflow (negative amount) of the previous
// calendar month, stores its day of month on the user, and returns it.
// Zero means no payday was found.
func (s *userService) UpdateDayPaid(username string) (int, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)

	var payment models.Transaction
	err = s.db.
		Where("amount < 0 AND date >= ? AND date < ?", prevStart, monthStart).
		Order("date asc, id asc").
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	day := payment.Date.Day()
	if err := s.db.Model(user).Update("day_paid", day).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return day, nil
}
