package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

// InsightHandler handles frequency-based spending insights.
type InsightHandler struct {
	userService services.UserServicer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(userService services.UserServicer) *InsightHandler {
	return &InsightHandler{userService: userService}
}

// insightRequest represents the request payload for insight recomputation.
type insightRequest struct {
	Username string `json:"username" binding:"required"`
}

// TopSpenders recomputes and returns the two most frequent categories.
// @Summary     Top spending categories
// @Description Recompute the two most frequent category labels across stored transactions
// @Tags        insights
// @Accept      json
// @Produce     json
// @Param       request body insightRequest true "Username"
// @Success     200 {object} services.TopSpenders "Top categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /top_spenders [post]
func (h *InsightHandler) TopSpenders(c *gin.Context) {
	var req insightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.userService.UpdateTopSpenders(req.Username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DayPaid recomputes and returns the user's payday.
// @Summary     Day paid
// @Description Find the day of month of the previous month's first inflow
// @Tags        insights
// @Accept      json
// @Produce     json
// @Param       request body insightRequest true "Username"
// @Success     200 {object} map[string]int "Day of month, zero when none found"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /day_paid [post]
func (h *InsightHandler) DayPaid(c *gin.Context) {
	var req insightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	day, err := h.userService.UpdateDayPaid(req.Username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day_paid": day})
}
