package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

// LedgerHandler handles checking and savings balance requests.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// BalanceRequest represents the request payload for balance mutations.
// Amounts travel as strings so clients never lose cents to float encoding.
type BalanceRequest struct {
	Username string          `json:"username" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// BankBalance returns the checking balance.
// @Summary     Checking balance
// @Tags        ledger
// @Produce     json
// @Param       username query string true "Username"
// @Success     200 {object} map[string]string "Balance"
// @Failure     400 {object} ErrorResponse "Missing username"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /bank_balance [get]
func (h *LedgerHandler) BankBalance(c *gin.Context) {
	username, err := requireUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	checking, _, err := h.ledgerService.Balances(username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_balance": checking})
}

// SavingsBalance returns the savings balance.
// @Summary     Savings balance
// @Tags        ledger
// @Produce     json
// @Param       username query string true "Username"
// @Success     200 {object} map[string]string "Balance"
// @Failure     400 {object} ErrorResponse "Missing username"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /savings_balance [get]
func (h *LedgerHandler) SavingsBalance(c *gin.Context) {
	username, err := requireUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	_, savings, err := h.ledgerService.Balances(username)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"savings_balance": savings})
}

// SetBankBalance overwrites the checking balance.
// @Summary     Set checking balance
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       request body BalanceRequest true "New balance"
// @Success     200 {object} map[string]string "Stored balance"
// @Failure     400 {object} ErrorResponse "Negative amount"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /set_bank_balance [post]
func (h *LedgerHandler) SetBankBalance(c *gin.Context) {
	var req BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.ledgerService.SetChecking(req.Username, req.Amount); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_balance": req.Amount})
}

// SetSavingsBalance overwrites the savings balance.
// @Summary     Set savings balance
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       request body BalanceRequest true "New balance"
// @Success     200 {object} map[string]string "Stored balance"
// @Failure     400 {object} ErrorResponse "Negative amount"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /set_savings_balance [post]
func (h *LedgerHandler) SetSavingsBalance(c *gin.Context) {
	var req BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.ledgerService.SetSavings(req.Username, req.Amount); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"savings_balance": req.Amount})
}

// SimulateIncome deposits an amount into checking.
// @Summary     Deposit into checking
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       request body BalanceRequest true "Deposit amount"
// @Success     200 {object} map[string]string "New balance"
// @Failure     400 {object} ErrorResponse "Negative amount"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /simulate_income [post]
func (h *LedgerHandler) SimulateIncome(c *gin.Context) {
	var req BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	balance, err := h.ledgerService.Deposit(req.Username, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_balance": balance})
}

// TransferToSavings moves an amount from checking to savings.
// @Summary     Transfer to savings
// @Description Move an amount from checking to savings; fails whole on insufficient funds
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       request body BalanceRequest true "Transfer amount"
// @Success     200 {object} map[string]string "Both balances"
// @Failure     400 {object} ErrorResponse "Negative amount or insufficient funds"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /transfer_to_savings [post]
func (h *LedgerHandler) TransferToSavings(c *gin.Context) {
	var req BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	checking, savings, err := h.ledgerService.TransferToSavings(req.Username, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bank_balance":    checking,
		"savings_balance": savings,
	})
}
