// Package forecast fits a linear trend to a cumulative spending series and
// extrapolates it to a month-end estimate.
package forecast

import (
	"errors"
	"time"

	"github.com/montanaflynn/stats"
)

// ProjectionDay is the day of month predictions are extrapolated to,
// regardless of the actual month length.
const ProjectionDay = 28

// ErrInsufficientData is returned when a series has fewer than two distinct
// days. Callers must treat this as "no prediction", never as a predicted 0.
var ErrInsufficientData = errors.New("not enough data points for prediction")

// Point is one day of a cumulative spending series.
type Point struct {
	Date       time.Time `json:"date"`
	Cumulative float64   `json:"cumulative"`
}

// PredictMonthEnd fits an ordinary least-squares line of cumulative amount
// against day-of-month and evaluates it at ProjectionDay. The fit uses
// standard least squares with no regularization or outlier handling.
func PredictMonthEnd(series []Point) (float64, error) {
	if len(series) < 2 {
		return 0, ErrInsufficientData
	}

	coords := make(stats.Series, 0, len(series))
	for _, p := range series {
		coords = append(coords, stats.Coordinate{X: float64(p.Date.Day()), Y: p.Cumulative})
	}

	fitted, err := stats.LinearRegression(coords)
	if err != nil {
		return 0, ErrInsufficientData
	}

	// The fitted points lie on the least-squares line; recover slope and
	// intercept from the first and last of them. Days in a series are
	// distinct, so the denominator is non-zero.
	first, last := fitted[0], fitted[len(fitted)-1]
	if last.X == first.X {
		return 0, ErrInsufficientData
	}
	slope := (last.Y - first.Y) / (last.X - first.X)
	intercept := first.Y - slope*first.X

	return slope*ProjectionDay + intercept, nil
}
