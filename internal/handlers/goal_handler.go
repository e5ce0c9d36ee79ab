package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

// GoalHandler handles saving-goal requests.
type GoalHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(userService services.UserServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{userService: userService, auditService: auditService}
}

// SetGoalRequest represents the request payload for setting a saving goal.
type SetGoalRequest struct {
	Username   string  `json:"username" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gte=0"`
	TimeMonths int     `json:"time_months" binding:"required,gt=0"`
}

// SetGoal stores a saving goal and derives the monthly rate.
// @Summary     Set a saving goal
// @Description Store a target amount and horizon; the monthly rate is amount divided by months
// @Tags        goals
// @Accept      json
// @Produce     json
// @Param       request body SetGoalRequest true "Goal details"
// @Success     200 {object} map[string]any "Derived monthly rate"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /set_goal [post]
func (h *GoalHandler) SetGoal(c *gin.Context) {
	var req SetGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	savingGoal, err := h.userService.SetGoal(req.Username, req.Amount, req.TimeMonths)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(req.Username, "set_goal", "goal", "", c.ClientIP(), map[string]any{
		"amount":      req.Amount,
		"time_months": req.TimeMonths,
	})
	c.JSON(http.StatusOK, gin.H{
		"amount":      req.Amount,
		"time_months": req.TimeMonths,
		"saving_goal": savingGoal,
	})
}

// GetGoal returns the stored saving goal.
// @Summary     Get the saving goal
// @Description Return the stored goal amount, horizon, and derived monthly rate
// @Tags        goals
// @Produce     json
// @Param       username query string true "Username"
// @Success     200 {object} services.SavingGoal "Stored goal"
// @Failure     400 {object} ErrorResponse "Missing username"
// @Failure     404 {object} ErrorResponse "User or goal not found"
// @Router      /get_goal [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	username, err := requireUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.userService.GetGoal(username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if goal == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrNotFound, "No saving goal set"))
		return
	}
	c.JSON(http.StatusOK, goal)
}
