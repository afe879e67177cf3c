package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bot608/duocortex-accounts-page/internal/application/dto"
	"github.com/bot608/duocortex-accounts-page/internal/application/services"
	"github.com/bot608/duocortex-accounts-page/internal/domain/wallet"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
)

// AccountHandler serves the authenticated account pages: dashboard, profile
// edits, withdrawals and the transaction history.
type AccountHandler struct {
	sessions *services.SessionService
	wallet   *services.WalletService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(sessions *services.SessionService, walletService *services.WalletService) *AccountHandler {
	return &AccountHandler{sessions: sessions, wallet: walletService}
}

// Dashboard returns the profile and spendable balance.
// GET /api/dashboard
func (h *AccountHandler) Dashboard(c *gin.Context) {
	profile := h.sessions.CurrentUser()
	if profile == nil {
		respondError(c, errors.ErrNotAuthenticated)
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		User:    profile,
		Balance: profile.AvailableBalance(),
	})
}

// UpdateProfile pushes profile edits to the backend and returns the merged
// record.
// PUT /api/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.sessions.UpdateProfile(c.Request.Context(), req.Profile())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// Withdraw validates and submits a bank payout request.
// POST /api/withdraw
func (h *AccountHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.wallet.Withdraw(c.Request.Context(), req.Withdrawal(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WithdrawResponse{
		Message: "Withdrawal requested",
		User:    profile,
	})
}

// Transactions lists the quiz and wallet history, newest first.
// GET /api/transactions?type=quiz_win&since=2026-01-01T00:00:00Z
func (h *AccountHandler) Transactions(c *gin.Context) {
	filter := wallet.Filter{Type: c.Query("type")}

	if since := c.Query("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			filter.Since = t
		}
	}
	if until := c.Query("until"); until != "" {
		if t, err := time.Parse(time.RFC3339, until); err == nil {
			filter.Until = t
		}
	}

	transactions, err := h.wallet.Transactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransactionsResponse{
		Transactions: transactions,
		Total:        len(transactions),
	})
}
