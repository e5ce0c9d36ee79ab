package services

import (
	"context"
	"testing"
	"time"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/testutil"
)

func TestCreateLinkToken(t *testing.T) {
	t.Run("returns_token_for_known_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewLinkService(&fakeAggregator{}, NewUserService(db), NewAuditService(db), time.Second)

		token, err := svc.CreateLinkToken(context.Background(), user.Username)
		testutil.AssertNoError(t, err)
		if token != "link-token" {
			t.Errorf("token = %q, want link-token", token)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLinkService(&fakeAggregator{}, NewUserService(db), NewAuditService(db), time.Second)

		_, err := svc.CreateLinkToken(context.Background(), "ghost")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("aggregator_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		svc := NewLinkService(&fakeAggregator{err: apperrors.ErrAggregator}, NewUserService(db), NewAuditService(db), time.Second)

		_, err := svc.CreateLinkToken(context.Background(), user.Username)
		testutil.AssertAppError(t, err, "AGGREGATOR_ERROR")
	})
}

func TestExchangePublicToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	userSvc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)
	svc := NewLinkService(&fakeAggregator{}, userSvc, NewAuditService(db), time.Second)

	itemID, err := svc.ExchangePublicToken(context.Background(), user.Username, "public-token")
	testutil.AssertNoError(t, err)
	if itemID != "item-1" {
		t.Errorf("item = %q, want item-1", itemID)
	}

	stored, err := userSvc.GetByUsername(user.Username)
	testutil.AssertNoError(t, err)
	if stored.AccessToken != "access-token" || stored.ItemID != "item-1" {
		t.Errorf("stored credentials = %q/%q", stored.AccessToken, stored.ItemID)
	}
}
