package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// AddTransactionRequest represents the request payload for adding a transaction.
type AddTransactionRequest struct {
	Username       string   `json:"username" binding:"required"`
	Name           string   `json:"name" binding:"required,min=1,max=200"`
	MerchantName   string   `json:"merchant_name" binding:"omitempty,max=200"`
	Amount         *float64 `json:"amount" binding:"required"`
	Date           string   `json:"date" binding:"omitempty"`
	Category       []string `json:"category" binding:"omitempty"`
	PaymentChannel string   `json:"payment_channel" binding:"omitempty,payment_channel"`
	Currency       string   `json:"currency" binding:"omitempty,iso4217"`
}

// ListTransactions returns transactions from the last 30 days.
// @Summary     List recent transactions
// @Description Return transactions from the last 30 days, newest first, paginated
// @Tags        transactions
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 50, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	response, err := h.transactionService.ListRecent(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// AddTransaction stores a manually entered transaction and reruns the
// spending pipeline.
// @Summary     Add a transaction
// @Description Store a manual transaction; predictions, actuals, and goal allocation are refreshed atomically
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body AddTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Stored transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /add_transaction [post]
func (h *TransactionHandler) AddTransaction(c *gin.Context) {
	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	transaction, err := h.transactionService.Add(services.AddTransactionInput{
		Username:       req.Username,
		Name:           req.Name,
		MerchantName:   req.MerchantName,
		Amount:         *req.Amount,
		Date:           date,
		Category:       req.Category,
		PaymentChannel: req.PaymentChannel,
		Currency:       req.Currency,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

// DeleteTransaction removes a transaction by its external ID.
// @Summary     Delete a transaction
// @Description Remove a transaction by its transaction ID
// @Tags        transactions
// @Produce     json
// @Param       transaction_id query string true "Transaction ID"
// @Success     200 {object} map[string]any "Deleted"
// @Failure     400 {object} ErrorResponse "Missing transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /delete_transaction [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID := c.Query("transaction_id")
	if transactionID == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction_id query parameter is required"))
		return
	}

	if err := h.transactionService.Delete(transactionID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": transactionID})
}
