package services

import (
	"testing"
	"time"

	"pennywise/internal/category"
	"pennywise/internal/testutil"
)

func TestLogin(t *testing.T) {
	t.Run("registers_unknown_username", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, created, err := svc.Login("newcomer", "hunter2")
		testutil.AssertNoError(t, err)

		if !created {
			t.Error("expected a new account to be created")
		}
		if user.Username != "newcomer" {
			t.Errorf("username = %q, want newcomer", user.Username)
		}
	})

	t.Run("accepts_correct_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, _, err := svc.Login("alice", "secret")
		testutil.AssertNoError(t, err)

		user, created, err := svc.Login("alice", "secret")
		testutil.AssertNoError(t, err)
		if created {
			t.Error("second login must not create a new account")
		}
		if user.Username != "alice" {
			t.Errorf("username = %q, want alice", user.Username)
		}
	})

	t.Run("rejects_wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, _, err := svc.Login("bob", "right")
		testutil.AssertNoError(t, err)

		_, _, err = svc.Login("bob", "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("rejects_empty_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, _, err := svc.Login("", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestSetGoal(t *testing.T) {
	t.Run("derives_monthly_rate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		rate, err := svc.SetGoal(user.Username, 1200, 6)
		testutil.AssertNoError(t, err)
		if rate != 200 {
			t.Errorf("rate = %v, want 200", rate)
		}

		goal, err := svc.GetGoal(user.Username)
		testutil.AssertNoError(t, err)
		if goal == nil {
			t.Fatal("expected a stored goal")
		}
		if goal.Amount != 1200 || goal.TimeMonths != 6 || goal.SavingGoal != 200 {
			t.Errorf("goal = %+v, want {1200 6 200}", goal)
		}
	})

	t.Run("rejects_zero_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SetGoal(user.Username, 1200, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.SetGoal("ghost", 100, 2)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetGoalUnset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	goal, err := svc.GetGoal(user.Username)
	testutil.AssertNoError(t, err)
	if goal != nil {
		t.Errorf("expected nil goal, got %+v", goal)
	}
}

func TestUpdateTopSpenders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	for i := 0; i < 3; i++ {
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Categories: []string{category.Food}})
	}
	for i := 0; i < 2; i++ {
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Categories: []string{category.Travel}})
	}
	testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{Categories: []string{category.Entertainment}})

	result, err := svc.UpdateTopSpenders(user.Username)
	testutil.AssertNoError(t, err)

	if result.TopSpender != category.Food || result.TopSpenderCount != 3 {
		t.Errorf("top = %q (%d), want Food and Drink (3)", result.TopSpender, result.TopSpenderCount)
	}
	if result.Top2Spender != category.Travel || result.Top2SpenderCount != 2 {
		t.Errorf("second = %q (%d), want Travel (2)", result.Top2Spender, result.Top2SpenderCount)
	}

	stored, err := svc.GetByUsername(user.Username)
	testutil.AssertNoError(t, err)
	if stored.TopSpender != category.Food || stored.Top2Spender != category.Travel {
		t.Errorf("persisted top spenders = %q, %q", stored.TopSpender, stored.Top2Spender)
	}
}

func TestUpdateDayPaid(t *testing.T) {
	t.Run("finds_previous_month_inflow", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		now := time.Now().UTC()
		payday := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 14)
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{
			Amount: -2500,
			Date:   payday,
		})

		day, err := svc.UpdateDayPaid(user.Username)
		testutil.AssertNoError(t, err)
		if day != 15 {
			t.Errorf("day = %d, want 15", day)
		}

		stored, err := svc.GetByUsername(user.Username)
		testutil.AssertNoError(t, err)
		if stored.DayPaid != 15 {
			t.Errorf("persisted day = %d, want 15", stored.DayPaid)
		}
	})

	t.Run("no_inflow_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		// Only an outflow in the previous month.
		now := time.Now().UTC()
		testutil.CreateTestTransaction(t, db, testutil.TransactionOpts{
			Amount: 80,
			Date:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 4),
		})

		day, err := svc.UpdateDayPaid(user.Username)
		testutil.AssertNoError(t, err)
		if day != 0 {
			t.Errorf("day = %d, want 0", day)
		}
	})
}
