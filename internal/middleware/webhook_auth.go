package middleware

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/plaid/plaid-go/v20/plaid"

	"pennywise/internal/logger"
)

// KeyFetcher retrieves the aggregator's webhook verification key for a key
// ID. Injected so tests can stub the upstream lookup.
type KeyFetcher func(ctx context.Context, keyID string) (plaid.JWKPublicKey, error)

// NewPlaidKeyFetcher returns a KeyFetcher backed by the Plaid API.
func NewPlaidKeyFetcher(clientID, secret, environment string) KeyFetcher {
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	if environment == "production" {
		cfg.UseEnvironment(plaid.Production)
	} else {
		cfg.UseEnvironment(plaid.Sandbox)
	}
	client := plaid.NewAPIClient(cfg)

	return func(ctx context.Context, keyID string) (plaid.JWKPublicKey, error) {
		req := plaid.NewWebhookVerificationKeyGetRequest(keyID)
		resp, _, err := client.PlaidApi.WebhookVerificationKeyGet(ctx).
			WebhookVerificationKeyGetRequest(*req).Execute()
		if err != nil {
			return plaid.JWKPublicKey{}, err
		}
		return resp.GetKey(), nil
	}
}

// WebhookVerifier ensures incoming aggregator webhooks are authentic: the
// Plaid-Verification header carries an ES256 JWT signed with a key the
// aggregator publishes per key ID.
func WebhookVerifier(fetchKey KeyFetcher) gin.HandlerFunc {
	// The cache is shared by concurrent webhook deliveries.
	var (
		cacheMu   sync.Mutex
		cachedKey *plaid.JWKPublicKey
	)

	return func(c *gin.Context) {
		// Read and restore the body so the handler can still bind it.
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWebhook(c, "failed to read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		tokenString := c.GetHeader("Plaid-Verification")
		if tokenString == "" {
			abortWebhook(c, "missing Plaid-Verification header")
			return
		}

		// Peek at the unverified header for algorithm and key ID.
		token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
		if err != nil {
			abortWebhook(c, "invalid verification token")
			return
		}
		if token.Method.Alg() != "ES256" {
			abortWebhook(c, "unexpected signing algorithm")
			return
		}
		keyID, ok := token.Header["kid"].(string)
		if !ok || keyID == "" {
			abortWebhook(c, "missing key ID")
			return
		}

		cacheMu.Lock()
		key := cachedKey
		cacheMu.Unlock()
		if key == nil || key.Kid != keyID {
			fetched, fetchErr := fetchKey(c.Request.Context(), keyID)
			if fetchErr != nil {
				logger.Get().Errorw("webhook key fetch failed", "kid", keyID, "error", fetchErr)
				abortWebhook(c, "failed to fetch verification key")
				return
			}
			key = &fetched
			cacheMu.Lock()
			cachedKey = key
			cacheMu.Unlock()
		}

		pubKey, err := buildECDSAKey(key)
		if err != nil {
			abortWebhook(c, "invalid verification key")
			return
		}

		if _, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return pubKey, nil
		}); err != nil {
			abortWebhook(c, "verification failed")
			return
		}

		c.Next()
	}
}

func abortWebhook(c *gin.Context, message string) {
	logger.Get().Warnw("webhook rejected", "reason", message, "client_ip", c.ClientIP())
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		gin.H{"error": gin.H{"code": "WEBHOOK_UNVERIFIED", "message": message}})
}

// buildECDSAKey constructs a P-256 public key from the aggregator's JWK.
func buildECDSAKey(jwk *plaid.JWKPublicKey) (*ecdsa.PublicKey, error) {
	xBytes, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("invalid X coordinate: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(jwk.Y)
	if err != nil {
		return nil, fmt.Errorf("invalid Y coordinate: %w", err)
	}
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}
