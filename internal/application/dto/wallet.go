package dto

import (
	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
	"github.com/bot608/duocortex-accounts-page/internal/domain/wallet"
)

// WithdrawRequest is the withdrawal form plus the credential confirmation
// the backend requires before paying out.
type WithdrawRequest struct {
	Amount               float64 `json:"amount"`
	AccountHolderName    string  `json:"accountHolderName"`
	AccountNumber        string  `json:"accountNumber"`
	ConfirmAccountNumber string  `json:"confirmAccountNumber"`
	BankName             string  `json:"bankName"`
	IFSCCode             string  `json:"ifscCode"`
	Email                string  `json:"email" binding:"required"`
	Password             string  `json:"password" binding:"required"`
}

// Withdrawal converts the request to the domain form.
func (r *WithdrawRequest) Withdrawal() *wallet.WithdrawalRequest {
	return &wallet.WithdrawalRequest{
		Amount:               r.Amount,
		AccountHolderName:    r.AccountHolderName,
		AccountNumber:        r.AccountNumber,
		ConfirmAccountNumber: r.ConfirmAccountNumber,
		BankName:             r.BankName,
		IFSCCode:             r.IFSCCode,
	}
}

// WithdrawResponse confirms a submitted withdrawal and carries the
// refreshed balance.
type WithdrawResponse struct {
	Message string        `json:"message"`
	User    *user.Profile `json:"user,omitempty"`
}

// TransactionsResponse is the wallet history listing.
type TransactionsResponse struct {
	Transactions []wallet.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}

// DashboardResponse is the account overview: profile plus spendable balance.
type DashboardResponse struct {
	User    *user.Profile `json:"user"`
	Balance float64       `json:"balance"`
}
