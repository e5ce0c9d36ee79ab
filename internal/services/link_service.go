package services

import (
	"context"
	"time"

	"pennywise/internal/plaidlink"
)

// linkService drives the aggregator link handshake and stores the resulting
// credentials on the user.
type linkService struct {
	aggregator   plaidlink.Client
	userService  UserServicer
	auditService AuditServicer
	timeout      time.Duration
}

// NewLinkService creates a new LinkServicer.
func NewLinkService(aggregator plaidlink.Client, userService UserServicer, auditService AuditServicer, timeout time.Duration) LinkServicer {
	return &linkService{
		aggregator:   aggregator,
		userService:  userService,
		auditService: auditService,
		timeout:      timeout,
	}
}

// CreateLinkToken starts the handshake for a known user and returns the
// token the frontend widget needs.
func (s *linkService) CreateLinkToken(ctx context.Context, username string) (string, error) {
	if _, err := s.userService.GetByUsername(username); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.aggregator.CreateLinkToken(ctx, username)
}

// ExchangePublicToken completes the handshake: the widget's public token is
// swapped for an access token, which is stored on the user. The item ID is
// returned so the client can correlate webhook deliveries.
func (s *linkService) ExchangePublicToken(ctx context.Context, username, publicToken string) (string, error) {
	if _, err := s.userService.GetByUsername(username); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	accessToken, itemID, err := s.aggregator.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return "", err
	}

	if err := s.userService.SetLinkCredentials(username, accessToken, itemID); err != nil {
		return "", err
	}
	s.auditService.Log(username, "link", "bank_item", itemID, "", nil)
	return itemID, nil
}
