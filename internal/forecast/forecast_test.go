package forecast

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestPredictMonthEnd(t *testing.T) {
	t.Run("exact_line", func(t *testing.T) {
		// Cumulative 2 on day 1 and 4 on day 2 fit y = 2x, so day 28
		// projects to 56.
		series := []Point{
			{Date: day(1), Cumulative: 2},
			{Date: day(2), Cumulative: 4},
		}

		got, err := PredictMonthEnd(series)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-56) > 1e-9 {
			t.Errorf("prediction = %v, want 56", got)
		}
	})

	t.Run("noisy_series", func(t *testing.T) {
		// Least squares through (1,10), (2,18), (3,32) has slope 11 and
		// intercept -2.
		series := []Point{
			{Date: day(1), Cumulative: 10},
			{Date: day(2), Cumulative: 18},
			{Date: day(3), Cumulative: 32},
		}

		got, err := PredictMonthEnd(series)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := 11.0*ProjectionDay - 2
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("prediction = %v, want %v", got, want)
		}
	})

	t.Run("single_point", func(t *testing.T) {
		series := []Point{{Date: day(5), Cumulative: 100}}

		_, err := PredictMonthEnd(series)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("empty_series", func(t *testing.T) {
		_, err := PredictMonthEnd(nil)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	})
}
