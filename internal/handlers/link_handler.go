package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/services"
)

// LinkHandler handles the bank-aggregator link handshake and its webhook.
type LinkHandler struct {
	linkService   services.LinkServicer
	ingestService services.IngestServicer
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linkService services.LinkServicer, ingestService services.IngestServicer) *LinkHandler {
	return &LinkHandler{
		linkService:   linkService,
		ingestService: ingestService,
	}
}

// CreateLinkTokenRequest represents the request payload for starting a link.
type CreateLinkTokenRequest struct {
	Username string `json:"username" binding:"required"`
}

// CreateLinkToken starts the aggregator link handshake.
// @Summary     Create a link token
// @Description Start the bank-link handshake for the frontend widget
// @Tags        link
// @Accept      json
// @Produce     json
// @Param       request body CreateLinkTokenRequest true "Link details"
// @Success     200 {object} map[string]string "Link token"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     502 {object} ErrorResponse "Aggregator error"
// @Failure     504 {object} ErrorResponse "Aggregator timeout"
// @Router      /create_link_token [post]
func (h *LinkHandler) CreateLinkToken(c *gin.Context) {
	var req CreateLinkTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	token, err := h.linkService.CreateLinkToken(c.Request.Context(), req.Username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link_token": token})
}

// ExchangePublicTokenRequest represents the request payload for completing a link.
type ExchangePublicTokenRequest struct {
	Username    string `json:"username" binding:"required"`
	PublicToken string `json:"public_token" binding:"required"`
}

// ExchangePublicToken completes the handshake and stores the credentials.
// @Summary     Exchange a public token
// @Description Swap the widget's public token for an access token and store it
// @Tags        link
// @Accept      json
// @Produce     json
// @Param       request body ExchangePublicTokenRequest true "Exchange details"
// @Success     200 {object} map[string]any "Link established"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     502 {object} ErrorResponse "Aggregator error"
// @Failure     504 {object} ErrorResponse "Aggregator timeout"
// @Router      /exchange_public_token [post]
func (h *LinkHandler) ExchangePublicToken(c *gin.Context) {
	var req ExchangePublicTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	itemID, err := h.linkService.ExchangePublicToken(c.Request.Context(), req.Username, req.PublicToken)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": itemID, "linked": true})
}

// webhookPayload is the subset of aggregator webhook fields acted on here.
type webhookPayload struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
}

// Webhook receives aggregator notifications. Signature verification happens
// in middleware; transaction updates trigger a sync for the linked user.
// @Summary     Aggregator webhook
// @Description Receive verified aggregator notifications and sync on transaction updates
// @Tags        link
// @Accept      json
// @Produce     json
// @Success     200 {object} map[string]any "Acknowledged"
// @Failure     401 {object} ErrorResponse "Unverified webhook"
// @Router      /plaid/webhook [post]
func (h *LinkHandler) Webhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if payload.WebhookType != "TRANSACTIONS" {
		c.JSON(http.StatusOK, gin.H{"acknowledged": true, "synced": 0})
		return
	}

	stored, err := h.ingestService.SyncItem(c.Request.Context(), payload.ItemID)
	if err != nil {
		// The aggregator retries on non-2xx; a missing item is not worth
		// a retry storm.
		logger.Get().Errorw("webhook sync failed",
			"item_id", payload.ItemID,
			"code", payload.WebhookCode,
			"error", err,
		)
		c.JSON(http.StatusOK, gin.H{"acknowledged": true, "synced": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "synced": stored})
}
