package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

// SpendingHandler handles the spending pipeline endpoints: cumulative
// series, predictions, actuals, and the adaptive goal allocation. The
// per-category routes share these parameterized handlers.
type SpendingHandler struct {
	spendingService services.SpendingServicer
}

// NewSpendingHandler creates a new SpendingHandler.
func NewSpendingHandler(spendingService services.SpendingServicer) *SpendingHandler {
	return &SpendingHandler{spendingService: spendingService}
}

// spendingRequest represents the request payload for pipeline stages.
type spendingRequest struct {
	Username string `json:"username" binding:"required"`
}

// Graph returns a handler serving the current month's cumulative daily
// series for one category label, or for all transactions when the label is
// empty. Keys are ISO dates.
// @Summary     Cumulative spending series
// @Description Current-month cumulative daily spending, keyed by ISO date
// @Tags        spending
// @Produce     json
// @Param       username query string true "Username"
// @Success     200 {object} map[string]float64 "Date to cumulative total"
// @Failure     400 {object} ErrorResponse "Missing username"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /graph_data [get]
func (h *SpendingHandler) Graph(categoryLabel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := requireUsername(c)
		if err != nil {
			respondWithError(c, err)
			return
		}

		points, err := h.spendingService.MonthlySeries(username, categoryLabel)
		if err != nil {
			respondWithError(c, err)
			return
		}

		series := make(map[string]float64, len(points))
		for _, p := range points {
			series[p.Date.Format("2006-01-02")] = p.Cumulative
		}
		c.JSON(http.StatusOK, series)
	}
}

// StorePredicted returns a handler that runs the month-end prediction for
// one category and persists it. A series too short to fit yields ok=false
// and leaves the stored value untouched.
// @Summary     Predict month-end spending
// @Description Fit the cumulative series and extrapolate to day 28; persists the result
// @Tags        spending
// @Accept      json
// @Produce     json
// @Param       request body spendingRequest true "Username"
// @Success     200 {object} map[string]any "Prediction, or ok=false on short series"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /food_predicted [post]
func (h *SpendingHandler) StorePredicted(categoryLabel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req spendingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}

		prediction, err := h.spendingService.StorePredicted(req.Username, categoryLabel)
		if err != nil {
			respondWithError(c, err)
			return
		}
		if !prediction.OK {
			c.JSON(http.StatusOK, gin.H{"ok": false, "reason": "not enough data this month"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "predicted_spending": prediction.Value})
	}
}

// StoreActual returns a handler that recomputes and persists the
// month-to-date total for one category.
// @Summary     Store month-to-date spending
// @Description Recompute the current month's total for a category and persist it
// @Tags        spending
// @Accept      json
// @Produce     json
// @Param       request body spendingRequest true "Username"
// @Success     200 {object} map[string]any "Stored total"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /post_actual_food [post]
func (h *SpendingHandler) StoreActual(categoryLabel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req spendingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}

		total, found, err := h.spendingService.StoreActual(req.Username, categoryLabel)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"spending": total, "found": found})
	}
}

// StoredValue returns a handler reading back a persisted snapshot. Kind is
// one of "actual", "predicted", or "goal".
// @Summary     Read a stored spending snapshot
// @Description Read back the persisted actual, predicted, or goal value for a category
// @Tags        spending
// @Produce     json
// @Param       username query string true "Username"
// @Success     200 {object} map[string]float64 "Stored value"
// @Failure     400 {object} ErrorResponse "Missing username"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /get_food_spending [get]
func (h *SpendingHandler) StoredValue(categoryLabel, kind, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := requireUsername(c)
		if err != nil {
			respondWithError(c, err)
			return
		}

		value, err := h.spendingService.StoredValue(username, categoryLabel, kind)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{field: value})
	}
}

// AdaptiveSpending recomputes the per-category goal allocation.
// @Summary     Allocate category goals
// @Description Distribute the spend limit left after the saving goal across categories by predicted share
// @Tags        spending
// @Accept      json
// @Produce     json
// @Param       request body spendingRequest true "Username"
// @Success     200 {object} services.Allocation "Allocation result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /adaptive_spending [post]
func (h *SpendingHandler) AdaptiveSpending(c *gin.Context) {
	var req spendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	allocation, err := h.spendingService.AdaptiveAllocate(req.Username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocation)
}

// TotalPredicted sums the stored per-category predictions.
// @Summary     Total predicted spending
// @Description Sum of the stored per-category month-end predictions
// @Tags        spending
// @Produce     json
// @Param       username query string true "Username"
// @Success     200 {object} map[string]float64 "Total"
// @Failure     400 {object} ErrorResponse "Missing username"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /total_spending_predicted [get]
func (h *SpendingHandler) TotalPredicted(c *gin.Context) {
	username, err := requireUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.spendingService.TotalPredicted(username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_spending_predicted": total})
}
