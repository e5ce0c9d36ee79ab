// Package fraud adapts transactions into the input contract of the
// pre-trained fraud classifier: categorical features are mapped through
// label encoders fitted at training time, then the encoded row is scored by
// the classifier service. Training itself is out of scope; only the fitted
// artifacts are consumed here.
package fraud

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "pennywise/internal/errors"
)

// Encoders holds the fitted label-encoder tables, keyed by column name then
// by label. The artifact is exported from the training pipeline as JSON.
type Encoders struct {
	columns map[string]map[string]int
}

// Encoder column names, matching the training data.
const (
	ColumnMerchant = "merchant"
	ColumnCategory = "category"
	ColumnTransNum = "trans_num"
)

// LoadEncoders reads a fitted-encoder artifact from disk.
func LoadEncoders(path string) (*Encoders, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encoder artifact: %w", err)
	}
	return ParseEncoders(data)
}

// ParseEncoders decodes a fitted-encoder artifact.
func ParseEncoders(data []byte) (*Encoders, error) {
	var columns map[string]map[string]int
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("decoding encoder artifact: %w", err)
	}
	return &Encoders{columns: columns}, nil
}

// Transform maps a label to its fitted integer code. A column or label that
// was not seen during fitting fails with UNENCODABLE_VALUE; it must surface
// as a client error, never crash a request.
func (e *Encoders) Transform(column, label string) (int, error) {
	table, ok := e.columns[column]
	if !ok {
		return 0, apperrors.WithContext(apperrors.ErrUnencodableValue, map[string]any{
			"column": column,
		})
	}
	code, ok := table[label]
	if !ok {
		return 0, apperrors.WithContext(apperrors.ErrUnencodableValue, map[string]any{
			"column": column,
			"value":  label,
		})
	}
	return code, nil
}
