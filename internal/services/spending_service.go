package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/category"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/forecast"
	"pennywise/internal/models"
)

// MonthlySpendLimit is the fixed monthly budget that the saving goal is
// carved out of. What remains after the goal is distributed across
// categories in proportion to their predicted totals.
const MonthlySpendLimit = 1000.0

// categoryColumns maps a category label to the user columns holding its
// actual, predicted, and allocated-goal values for the current month.
type categoryColumn struct {
	actual    string
	predicted string
	goal      string
}

var categoryColumns = map[string]categoryColumn{
	category.Food: {
		actual:    "food_spending",
		predicted: "food_spending_predicted",
		goal:      "food_spending_goal",
	},
	category.Entertainment: {
		actual:    "entertainment_spending",
		predicted: "entertainment_spending_predicted",
		goal:      "entertainment_spending_goal",
	},
	category.Travel: {
		actual:    "travel_spending",
		predicted: "travel_spending_predicted",
		goal:      "travel_spending_goal",
	},
}

// TrackedCategories lists the category labels the pipeline maintains
// snapshots for, in stable order.
var TrackedCategories = []string{category.Food, category.Entertainment, category.Travel}

// spendingService implements the per-category spending pipeline.
type spendingService struct {
	db *gorm.DB
}

// NewSpendingService creates a new SpendingServicer.
func NewSpendingService(db *gorm.DB) SpendingServicer {
	return &spendingService{db: db}
}

// monthWindow returns the half-open [start, end) window of the month that
// contains now: the first instant of the month through the first instant of
// the next month.
func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func columnsFor(categoryLabel string) (categoryColumn, error) {
	cols, ok := categoryColumns[categoryLabel]
	if !ok {
		return categoryColumn{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category "+categoryLabel)
	}
	return cols, nil
}

// MonthlySeries builds the cumulative daily spending series for the current
// month, filtered to transactions carrying the given category label. An empty
// label includes every transaction. Inflows (negative amounts) are excluded.
func (s *spendingService) MonthlySeries(username, categoryLabel string) ([]forecast.Point, error) {
	return s.monthlySeries(s.db, username, categoryLabel)
}

func (s *spendingService) monthlySeries(tx *gorm.DB, username, categoryLabel string) ([]forecast.Point, error) {
	if err := s.requireUser(tx, username); err != nil {
		return nil, err
	}

	start, end := monthWindow(time.Now().UTC())
	var transactions []models.Transaction
	err := tx.
		Where("date >= ? AND date < ?", start, end).
		Order("date asc, id asc").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var points []forecast.Point
	running := 0.0
	for _, t := range transactions {
		if t.Amount <= 0 {
			continue
		}
		if categoryLabel != "" && !category.Contains(t.Category, categoryLabel) {
			continue
		}
		running += t.Amount
		day := time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 0, 0, 0, 0, time.UTC)
		if n := len(points); n > 0 && points[n-1].Date.Equal(day) {
			points[n-1].Cumulative = running
			continue
		}
		points = append(points, forecast.Point{Date: day, Cumulative: running})
	}
	return points, nil
}

func (s *spendingService) requireUser(tx *gorm.DB, username string) error {
	var user models.User
	err := tx.Select("id").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// predict estimates month-end cumulative spending for one category. A series
// covering fewer than two distinct days yields OK=false rather than zero.
func (s *spendingService) predict(tx *gorm.DB, username, categoryLabel string) (Prediction, error) {
	if _, err := columnsFor(categoryLabel); err != nil {
		return Prediction{}, err
	}
	points, err := s.monthlySeries(tx, username, categoryLabel)
	if err != nil {
		return Prediction{}, err
	}
	value, err := forecast.PredictMonthEnd(points)
	if errors.Is(err, forecast.ErrInsufficientData) {
		return Prediction{OK: false}, nil
	}
	if err != nil {
		return Prediction{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return Prediction{Value: value, OK: true}, nil
}

// StorePredicted runs the prediction for one category and persists it on the
// user row. When the series is too short the stored value is left untouched.
func (s *spendingService) StorePredicted(username, categoryLabel string) (Prediction, error) {
	var result Prediction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.storePredicted(tx, username, categoryLabel)
		return txErr
	})
	return result, err
}

func (s *spendingService) storePredicted(tx *gorm.DB, username, categoryLabel string) (Prediction, error) {
	cols, err := columnsFor(categoryLabel)
	if err != nil {
		return Prediction{}, err
	}
	prediction, err := s.predict(tx, username, categoryLabel)
	if err != nil {
		return Prediction{}, err
	}
	if !prediction.OK {
		return prediction, nil
	}
	err = tx.Model(&models.User{}).
		Where("username = ?", username).
		Update(cols.predicted, prediction.Value).Error
	if err != nil {
		return Prediction{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return prediction, nil
}

// StoreActual recomputes the month-to-date total for one category and
// persists it. The bool reports whether the series had any data.
func (s *spendingService) StoreActual(username, categoryLabel string) (float64, bool, error) {
	var (
		total float64
		found bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		total, found, txErr = s.storeActual(tx, username, categoryLabel)
		return txErr
	})
	return total, found, err
}

func (s *spendingService) storeActual(tx *gorm.DB, username, categoryLabel string) (float64, bool, error) {
	cols, err := columnsFor(categoryLabel)
	if err != nil {
		return 0, false, err
	}
	points, err := s.monthlySeries(tx, username, categoryLabel)
	if err != nil {
		return 0, false, err
	}
	if len(points) == 0 {
		return 0, false, nil
	}
	total := points[len(points)-1].Cumulative
	err = tx.Model(&models.User{}).
		Where("username = ?", username).
		Update(cols.actual, total).Error
	if err != nil {
		return 0, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, true, nil
}

// StoredValue reads back a persisted snapshot for one category. Kind is one
// of "actual", "predicted", or "goal".
func (s *spendingService) StoredValue(username, categoryLabel, kind string) (float64, error) {
	cols, err := columnsFor(categoryLabel)
	if err != nil {
		return 0, err
	}
	var column string
	switch kind {
	case "actual":
		column = cols.actual
	case "predicted":
		column = cols.predicted
	case "goal":
		column = cols.goal
	default:
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown snapshot kind "+kind)
	}

	var user models.User
	err = s.db.Select(column).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.ErrUserNotFound
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	switch column {
	case "food_spending":
		return user.FoodSpending, nil
	case "entertainment_spending":
		return user.EntertainmentSpending, nil
	case "travel_spending":
		return user.TravelSpending, nil
	case "food_spending_predicted":
		return user.FoodSpendingPredicted, nil
	case "entertainment_spending_predicted":
		return user.EntertainmentSpendingPredicted, nil
	case "travel_spending_predicted":
		return user.TravelSpendingPredicted, nil
	case "food_spending_goal":
		return user.FoodSpendingGoal, nil
	case "entertainment_spending_goal":
		return user.EntertainmentSpendingGoal, nil
	case "travel_spending_goal":
		return user.TravelSpendingGoal, nil
	}
	return 0, apperrors.ErrInternalServer
}

// TotalPredicted sums the stored per-category predictions.
func (s *spendingService) TotalPredicted(username string) (float64, error) {
	user, err := s.loadUser(s.db, username)
	if err != nil {
		return 0, err
	}
	return user.FoodSpendingPredicted + user.EntertainmentSpendingPredicted + user.TravelSpendingPredicted, nil
}

func (s *spendingService) loadUser(tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := tx.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// AllocateGoals distributes the spend limit left after the saving goal across
// categories in proportion to their predicted totals. A non-positive limit or
// non-positive total prediction zeroes every category goal.
func AllocateGoals(predicted map[string]float64, savingGoal float64) Allocation {
	spendLimit := MonthlySpendLimit - savingGoal
	total := 0.0
	for _, v := range predicted {
		total += v
	}

	alloc := Allocation{
		SpendLimit:     spendLimit,
		TotalPredicted: total,
		Goals:          make(map[string]float64, len(predicted)),
	}
	if spendLimit <= 0 || total <= 0 {
		for label := range predicted {
			alloc.Goals[label] = 0
		}
		return alloc
	}

	alloc.Ratio = spendLimit / total
	for label, v := range predicted {
		alloc.Goals[label] = v * alloc.Ratio
	}
	return alloc
}

// AdaptiveAllocate recomputes the per-category goal allocation from the
// stored predictions and the user's saving goal, and persists it.
func (s *spendingService) AdaptiveAllocate(username string) (*Allocation, error) {
	var result *Allocation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.adaptiveAllocate(tx, username)
		return txErr
	})
	return result, err
}

func (s *spendingService) adaptiveAllocate(tx *gorm.DB, username string) (*Allocation, error) {
	user, err := s.loadUser(tx, username)
	if err != nil {
		return nil, err
	}

	savingGoal := 0.0
	if user.SavingGoal != nil {
		savingGoal = *user.SavingGoal
	}
	predicted := map[string]float64{
		category.Food:          user.FoodSpendingPredicted,
		category.Entertainment: user.EntertainmentSpendingPredicted,
		category.Travel:        user.TravelSpendingPredicted,
	}

	alloc := AllocateGoals(predicted, savingGoal)
	updates := map[string]any{}
	for label, value := range alloc.Goals {
		updates[categoryColumns[label].goal] = value
	}
	if err := tx.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &alloc, nil
}

// RefreshAll runs the whole pipeline for a user inside one database
// transaction: per-category predictions, then per-category actuals, then the
// goal allocation. Either every stage lands or none does.
func (s *spendingService) RefreshAll(username string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.refreshAll(tx, username)
	})
}

// RefreshAllWithDB runs the pipeline inside an already open transaction,
// for callers that need the refresh to land atomically with their own writes.
func (s *spendingService) RefreshAllWithDB(tx *gorm.DB, username string) error {
	return s.refreshAll(tx, username)
}

func (s *spendingService) refreshAll(tx *gorm.DB, username string) error {
	for _, label := range TrackedCategories {
		if _, err := s.storePredicted(tx, username, label); err != nil {
			return err
		}
	}
	for _, label := range TrackedCategories {
		if _, _, err := s.storeActual(tx, username, label); err != nil {
			return err
		}
	}
	_, err := s.adaptiveAllocate(tx, username)
	return err
}
