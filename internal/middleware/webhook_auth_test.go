package middleware

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/plaid/plaid-go/v20/plaid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func webhookTestKey(t *testing.T, kid string) (*ecdsa.PrivateKey, plaid.JWKPublicKey) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	x := make([]byte, 32)
	y := make([]byte, 32)
	priv.PublicKey.X.FillBytes(x)
	priv.PublicKey.Y.FillBytes(y)

	jwk := plaid.JWKPublicKey{
		Alg: "ES256",
		Crv: "P-256",
		Kid: kid,
		Kty: "EC",
		Use: "sig",
		X:   base64.RawURLEncoding.EncodeToString(x),
		Y:   base64.RawURLEncoding.EncodeToString(y),
	}
	return priv, jwk
}

func signWebhookToken(t *testing.T, priv *ecdsa.PrivateKey, kid string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{"iat": time.Now().Unix()})
	token.Header["kid"] = kid
	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func deliverWebhook(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/plaid/webhook", strings.NewReader(`{"webhook_type":"TRANSACTIONS"}`))
	if token != "" {
		req.Header.Set("Plaid-Verification", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookVerifier(t *testing.T) {
	t.Run("valid_signature_passes_and_key_is_cached", func(t *testing.T) {
		priv, jwk := webhookTestKey(t, "kid-1")
		fetches := 0
		fetch := func(ctx context.Context, keyID string) (plaid.JWKPublicKey, error) {
			fetches++
			return jwk, nil
		}

		router := gin.New()
		router.POST("/plaid/webhook", WebhookVerifier(fetch), func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 2; i++ {
			w := deliverWebhook(router, signWebhookToken(t, priv, "kid-1"))
			if w.Code != http.StatusOK {
				t.Fatalf("delivery %d status = %d, want 200: %s", i, w.Code, w.Body.String())
			}
		}
		if fetches != 1 {
			t.Errorf("key fetches = %d, want 1", fetches)
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		_, jwk := webhookTestKey(t, "kid-1")
		router := gin.New()
		router.POST("/plaid/webhook", WebhookVerifier(func(ctx context.Context, keyID string) (plaid.JWKPublicKey, error) {
			return jwk, nil
		}), func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := deliverWebhook(router, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("wrong_algorithm", func(t *testing.T) {
		_, jwk := webhookTestKey(t, "kid-1")
		router := gin.New()
		router.POST("/plaid/webhook", WebhookVerifier(func(ctx context.Context, keyID string) (plaid.JWKPublicKey, error) {
			return jwk, nil
		}), func(c *gin.Context) { c.Status(http.StatusOK) })

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()})
		token.Header["kid"] = "kid-1"
		signed, err := token.SignedString([]byte("not-an-ecdsa-key"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		if w := deliverWebhook(router, signed); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("signature_from_wrong_key", func(t *testing.T) {
		_, jwk := webhookTestKey(t, "kid-1")
		impostor, _ := webhookTestKey(t, "kid-1")
		router := gin.New()
		router.POST("/plaid/webhook", WebhookVerifier(func(ctx context.Context, keyID string) (plaid.JWKPublicKey, error) {
			return jwk, nil
		}), func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := deliverWebhook(router, signWebhookToken(t, impostor, "kid-1")); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}
