package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

// AlertHandler handles fraud-alert requests.
type AlertHandler struct {
	alertService services.AlertServicer
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService services.AlertServicer) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// alertRequest represents the request payload for classifier invocation.
type alertRequest struct {
	Username string `json:"username" binding:"required"`
}

// ResolveAlertRequest represents the request payload for acknowledging an alert.
type ResolveAlertRequest struct {
	Username string `json:"username" binding:"required"`
	Action   string `json:"action" binding:"required,alert_action"`
}

// Evaluate scores the latest transaction against the fraud classifier.
// @Summary     Evaluate latest transaction
// @Description Encode and score the latest transaction; a fraud verdict flags the user
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Param       request body alertRequest true "Username"
// @Success     200 {object} services.AlertResult "Verdict"
// @Failure     404 {object} ErrorResponse "User or transaction not found"
// @Failure     422 {object} ErrorResponse "Value unseen by encoders"
// @Failure     502 {object} ErrorResponse "Classifier unavailable"
// @Router      /alert [post]
func (h *AlertHandler) Evaluate(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.alertService.Evaluate(c.Request.Context(), req.Username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status reports whether the user has an active alert.
// @Summary     Alert status
// @Tags        alerts
// @Produce     json
// @Param       username query string true "Username"
// @Success     200 {object} map[string]bool "Active flag"
// @Failure     400 {object} ErrorResponse "Missing username"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /alert_status [get]
func (h *AlertHandler) Status(c *gin.Context) {
	username, err := requireUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	active, err := h.alertService.Status(username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_alert": active})
}

// Resolve records the operator's verdict and clears the alert.
// @Summary     Resolve an alert
// @Description Acknowledge an active alert; "yes" verifies the transaction, "no" reports it
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Param       request body ResolveAlertRequest true "Verdict"
// @Success     200 {object} map[string]string "Resolution status"
// @Failure     400 {object} ErrorResponse "Invalid action"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /alert_resolve [post]
func (h *AlertHandler) Resolve(c *gin.Context) {
	var req ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	status, err := h.alertService.Resolve(req.Username, req.Action)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
