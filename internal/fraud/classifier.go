package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "pennywise/internal/errors"
)

// FeatureRow is one encoded observation submitted to the classifier.
// Categorical columns carry their label-encoded integer codes; time features
// are derived from the transaction's real timestamps.
type FeatureRow struct {
	Merchant   int     `json:"merchant"`
	Category   int     `json:"category"`
	Amount     float64 `json:"amt"`
	TransNum   int     `json:"trans_num"`
	Hour       int     `json:"hour"`
	DayOfWeek  int     `json:"day_of_week"`
	DayOfMonth int     `json:"day_of_month"`
	Month      int     `json:"month"`
}

// Classifier scores an encoded feature row. The returned class is 1 for
// potential fraud, 0 otherwise.
type Classifier interface {
	Score(ctx context.Context, row FeatureRow) (int, error)
}

// HTTPClassifier queries the model-serving endpoint that hosts the
// pre-trained binary classifier.
type HTTPClassifier struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClassifier creates a classifier client for the given scorer URL.
func NewHTTPClassifier(baseURL string, httpClient *http.Client) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Score submits the feature row and returns the predicted class.
func (c *HTTPClassifier) Score(ctx context.Context, row FeatureRow) (int, error) {
	jsonBody, err := json.Marshal(row)
	if err != nil {
		return 0, fmt.Errorf("marshaling feature row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", strings.NewReader(string(jsonBody)))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrClassifierUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.Wrap(apperrors.ErrClassifierUnavailable,
			fmt.Errorf("scoring request: unexpected status %d", resp.StatusCode))
	}

	var result struct {
		Class int `json:"class"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrClassifierUnavailable,
			fmt.Errorf("decoding scoring response: %w", err))
	}
	return result.Class, nil
}
