// Package plaidlink wraps the Plaid bank-aggregation API behind a small
// client interface so services and tests do not depend on the SDK directly.
package plaidlink

import (
	"context"
	"errors"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	apperrors "pennywise/internal/errors"
)

// ExternalTransaction is one transaction pulled from the aggregator.
// Category holds the aggregator's raw label list; callers are responsible
// for storing it in canonical form.
type ExternalTransaction struct {
	TransactionID  string
	AccountID      string
	Name           string
	MerchantName   string
	Amount         float64
	Date           time.Time
	Category       []string
	PaymentChannel string
	Currency       string
}

// Client is the contract for the bank-aggregation API.
type Client interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	FetchTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]ExternalTransaction, error)
}

// plaidClient implements Client on the Plaid SDK.
type plaidClient struct {
	api        *plaid.APIClient
	clientName string
}

// Options configures a Plaid-backed Client.
type Options struct {
	ClientID    string
	Secret      string
	Environment string // "sandbox" or "production"
	ClientName  string
}

// New creates a Client backed by the Plaid API. Returns
// ErrAggregatorNotConfigured when credentials are missing.
func New(opts Options) (Client, error) {
	if opts.ClientID == "" || opts.Secret == "" {
		return nil, apperrors.ErrAggregatorNotConfigured
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", opts.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", opts.Secret)
	if opts.Environment == "production" {
		configuration.UseEnvironment(plaid.Production)
	} else {
		configuration.UseEnvironment(plaid.Sandbox)
	}

	return &plaidClient{
		api:        plaid.NewAPIClient(configuration),
		clientName: opts.ClientName,
	}, nil
}

// CreateLinkToken starts the link handshake and returns a link token for the
// frontend widget.
func (c *plaidClient) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	request := plaid.NewLinkTokenCreateRequest(
		c.clientName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		plaid.LinkTokenCreateRequestUser{ClientUserId: clientUserID},
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_AUTH, plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken swaps the public token produced by the link widget for
// a long-lived access token and item ID.
func (c *plaidClient) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	resp, _, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", mapError(err)
	}
	return resp.GetAccessToken(), resp.GetItemId(), nil
}

// FetchTransactions pulls transactions for the given window.
func (c *plaidClient) FetchTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]ExternalTransaction, error) {
	request := plaid.NewTransactionsGetRequest(
		accessToken,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)

	resp, _, err := c.api.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, mapError(err)
	}

	transactions := make([]ExternalTransaction, 0, len(resp.GetTransactions()))
	for _, t := range resp.GetTransactions() {
		date, parseErr := time.Parse("2006-01-02", t.GetDate())
		if parseErr != nil {
			continue
		}
		transactions = append(transactions, ExternalTransaction{
			TransactionID:  t.GetTransactionId(),
			AccountID:      t.GetAccountId(),
			Name:           t.GetName(),
			MerchantName:   t.GetMerchantName(),
			Amount:         t.GetAmount(),
			Date:           date,
			Category:       t.GetCategory(),
			PaymentChannel: t.GetPaymentChannel(),
			Currency:       t.GetIsoCurrencyCode(),
		})
	}
	return transactions, nil
}

// unconfigured is a Client that fails every call. The server runs without
// aggregator credentials in local setups; only the link and sync surfaces go
// dark.
type unconfigured struct{}

// Unconfigured returns a Client for deployments without aggregator credentials.
func Unconfigured() Client {
	return unconfigured{}
}

func (unconfigured) CreateLinkToken(context.Context, string) (string, error) {
	return "", apperrors.ErrAggregatorNotConfigured
}

func (unconfigured) ExchangePublicToken(context.Context, string) (string, string, error) {
	return "", "", apperrors.ErrAggregatorNotConfigured
}

func (unconfigured) FetchTransactions(context.Context, string, time.Time, time.Time) ([]ExternalTransaction, error) {
	return nil, apperrors.ErrAggregatorNotConfigured
}

// mapError converts SDK failures into the application error taxonomy.
// Timeouts are retryable; other upstream failures carry the raw payload in
// the error context so clients can see what the aggregator said.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ErrAggregatorTimeout, err)
	}

	var plaidErr plaid.GenericOpenAPIError
	if errors.As(err, &plaidErr) {
		wrapped := apperrors.WithContext(apperrors.ErrAggregator, map[string]any{
			"upstream": string(plaidErr.Body()),
		})
		wrapped.Internal = err
		return wrapped
	}
	return apperrors.Wrap(apperrors.ErrAggregator, err)
}
