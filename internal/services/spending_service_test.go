package services

import (
	"math"
	"testing"

	"pennywise/internal/category"
	"pennywise/internal/testutil"
)

func TestMonthlySeries(t *testing.T) {
	t.Run("cumulative_and_grouped_by_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSpendingService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 10, Date: testutil.MonthDay(1)})
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 5, Date: testutil.MonthDay(1)})
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 20, Date: testutil.MonthDay(2)})

		points, err := svc.MonthlySeries(user.Username, category.Food)
		testutil.AssertNoError(t, err)

		if len(points) != 2 {
			t.Fatalf("expected 2 daily points, got %d", len(points))
		}
		if points[0].Cumulative != 15 {
			t.Errorf("day 1 cumulative = %v, want 15", points[0].Cumulative)
		}
		if points[1].Cumulative != 35 {
			t.Errorf("day 2 cumulative = %v, want 35", points[1].Cumulative)
		}
		for i := 1; i < len(points); i++ {
			if points[i].Cumulative < points[i-1].Cumulative {
				t.Error("cumulative series must be non-decreasing")
			}
		}
	})

	t.Run("filters_by_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSpendingService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{
			Amount: 10, Date: testutil.MonthDay(1), Categories: []string{category.Food},
		})
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{
			Amount: 99, Date: testutil.MonthDay(1), Categories: []string{category.Travel},
		})

		points, err := svc.MonthlySeries(user.Username, category.Food)
		testutil.AssertNoError(t, err)
		if len(points) != 1 || points[0].Cumulative != 10 {
			t.Errorf("points = %+v, want one day at 10", points)
		}
	})

	t.Run("excludes_inflows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSpendingService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: -500, Date: testutil.MonthDay(1)})
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 30, Date: testutil.MonthDay(2)})

		points, err := svc.MonthlySeries(user.Username, "")
		testutil.AssertNoError(t, err)
		if len(points) != 1 || points[0].Cumulative != 30 {
			t.Errorf("points = %+v, want one day at 30", points)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSpendingService(db)

		_, err := svc.MonthlySeries("ghost", category.Food)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestStorePredicted(t *testing.T) {
	t.Run("extrapolates_to_day_28", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSpendingService(db)
		user := testutil.CreateTestUser(t, db)

		// Cumulative 2 on day 1, 4 on day 2: the line y = 2x gives 56 at
		// day 28.
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 2, Date: testutil.MonthDay(1)})
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 2, Date: testutil.MonthDay(2)})

		prediction, err := svc.StorePredicted(user.Username, category.Food)
		testutil.AssertNoError(t, err)
		if !prediction.OK {
			t.Fatal("expected a prediction")
		}
		if math.Abs(prediction.Value-56) > 1e-9 {
			t.Errorf("prediction = %v, want 56", prediction.Value)
		}
	})

	t.Run("single_day_is_not_a_zero_prediction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSpendingService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 40, Date: testutil.MonthDay(1)})

		prediction, err := svc.StorePredicted(user.Username, category.Food)
		testutil.AssertNoError(t, err)
		if prediction.OK {
			t.Errorf("expected no prediction, got %v", prediction.Value)
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSpendingService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.StorePredicted(user.Username, "Groceries")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestStorePredictedAndReadBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSpendingService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 2, Date: testutil.MonthDay(1)})
	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 2, Date: testutil.MonthDay(2)})

	prediction, err := svc.StorePredicted(user.Username, category.Food)
	testutil.AssertNoError(t, err)
	if !prediction.OK {
		t.Fatal("expected a prediction")
	}

	stored, err := svc.StoredValue(user.Username, category.Food, "predicted")
	testutil.AssertNoError(t, err)
	if math.Abs(stored-prediction.Value) > 1e-9 {
		t.Errorf("stored = %v, want %v", stored, prediction.Value)
	}
}

func TestStoreActual(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSpendingService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 12.5, Date: testutil.MonthDay(1)})
	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Amount: 7.5, Date: testutil.MonthDay(3)})

	total, found, err := svc.StoreActual(user.Username, category.Food)
	testutil.AssertNoError(t, err)
	if !found {
		t.Fatal("expected data")
	}
	if total != 20 {
		t.Errorf("total = %v, want 20", total)
	}

	stored, err := svc.StoredValue(user.Username, category.Food, "actual")
	testutil.AssertNoError(t, err)
	if stored != 20 {
		t.Errorf("stored = %v, want 20", stored)
	}
}

func TestAllocateGoals(t *testing.T) {
	t.Run("proportional_split", func(t *testing.T) {
		predicted := map[string]float64{
			category.Food:          100,
			category.Entertainment: 50,
			category.Travel:        50,
		}

		alloc := AllocateGoals(predicted, 200)

		if alloc.SpendLimit != 800 {
			t.Errorf("spend limit = %v, want 800", alloc.SpendLimit)
		}
		if alloc.Ratio != 4 {
			t.Errorf("ratio = %v, want 4", alloc.Ratio)
		}
		if alloc.Goals[category.Food] != 400 || alloc.Goals[category.Entertainment] != 200 || alloc.Goals[category.Travel] != 200 {
			t.Errorf("goals = %+v, want 400/200/200", alloc.Goals)
		}

		sum := 0.0
		for _, v := range alloc.Goals {
			sum += v
		}
		if math.Abs(sum-alloc.SpendLimit) > 1e-9 {
			t.Errorf("allocations sum to %v, want spend limit %v", sum, alloc.SpendLimit)
		}
	})

	t.Run("zero_predictions_zero_goals", func(t *testing.T) {
		predicted := map[string]float64{
			category.Food:          0,
			category.Entertainment: 0,
			category.Travel:        0,
		}

		alloc := AllocateGoals(predicted, 100)
		for label, v := range alloc.Goals {
			if v != 0 {
				t.Errorf("goal for %s = %v, want 0", label, v)
			}
		}
	})

	t.Run("saving_goal_eats_whole_limit", func(t *testing.T) {
		predicted := map[string]float64{category.Food: 300}

		alloc := AllocateGoals(predicted, 1200)
		if alloc.SpendLimit != -200 {
			t.Errorf("spend limit = %v, want -200", alloc.SpendLimit)
		}
		if alloc.Goals[category.Food] != 0 {
			t.Errorf("goal = %v, want 0 when nothing is left to spend", alloc.Goals[category.Food])
		}
	})
}

func TestRefreshAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSpendingService(db)
	userSvc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	_, err := userSvc.SetGoal(user.Username, 1200, 6)
	testutil.AssertNoError(t, err)

	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{
		Amount: 2, Date: testutil.MonthDay(1), Categories: []string{category.Food},
	})
	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{
		Amount: 2, Date: testutil.MonthDay(2), Categories: []string{category.Food},
	})

	testutil.AssertNoError(t, svc.RefreshAll(user.Username))

	predicted, err := svc.StoredValue(user.Username, category.Food, "predicted")
	testutil.AssertNoError(t, err)
	if math.Abs(predicted-56) > 1e-9 {
		t.Errorf("predicted = %v, want 56", predicted)
	}

	actual, err := svc.StoredValue(user.Username, category.Food, "actual")
	testutil.AssertNoError(t, err)
	if actual != 4 {
		t.Errorf("actual = %v, want 4", actual)
	}

	// Food carries the entire predicted total, so it receives the whole
	// remaining budget: 1000 - 200 = 800.
	goal, err := svc.StoredValue(user.Username, category.Food, "goal")
	testutil.AssertNoError(t, err)
	if math.Abs(goal-800) > 1e-9 {
		t.Errorf("goal = %v, want 800", goal)
	}

	total, err := svc.TotalPredicted(user.Username)
	testutil.AssertNoError(t, err)
	if math.Abs(total-56) > 1e-9 {
		t.Errorf("total predicted = %v, want 56", total)
	}
}
