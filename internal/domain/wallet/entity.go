package wallet

import (
	"regexp"
	"strings"
	"time"

	"github.com/bot608/duocortex-accounts-page/pkg/errors"
)

// MinWithdrawalAmount is the smallest amount the backend will pay out.
const MinWithdrawalAmount = 100

var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// WithdrawalRequest is a bank payout request built from the withdrawal form.
type WithdrawalRequest struct {
	Amount               float64 `json:"amount"`
	AccountHolderName    string  `json:"accountHolderName"`
	AccountNumber        string  `json:"accountNumber"`
	ConfirmAccountNumber string  `json:"-"`
	BankName             string  `json:"bankName"`
	IFSCCode             string  `json:"ifscCode"`
}

// Normalize trims free-text fields and uppercases the IFSC code.
func (r *WithdrawalRequest) Normalize() {
	r.AccountHolderName = strings.TrimSpace(r.AccountHolderName)
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	r.ConfirmAccountNumber = strings.TrimSpace(r.ConfirmAccountNumber)
	r.BankName = strings.TrimSpace(r.BankName)
	r.IFSCCode = strings.ToUpper(strings.TrimSpace(r.IFSCCode))
}

// Validate checks the request against the form constraints. It is entirely
// local; a request that fails here never reaches the backend.
func (r *WithdrawalRequest) Validate(availableCoins float64) error {
	r.Normalize()
	verrs := &errors.ValidationErrors{}

	switch {
	case r.Amount <= 0:
		verrs.Add("amount", "Amount is required")
	case r.Amount < MinWithdrawalAmount:
		verrs.Add("amount", "Minimum withdrawal amount is ₹100")
	case r.Amount > availableCoins:
		verrs.Add("amount", "Amount exceeds available coins")
	}

	if r.AccountHolderName == "" {
		verrs.Add("accountHolderName", "Account holder name is required")
	}

	if r.AccountNumber == "" {
		verrs.Add("accountNumber", "Account number is required")
	} else if len(r.AccountNumber) < 9 || len(r.AccountNumber) > 18 {
		verrs.Add("accountNumber", "Account number must be 9-18 digits")
	}

	if r.AccountNumber != r.ConfirmAccountNumber {
		verrs.Add("confirmAccountNumber", "Account numbers do not match")
	}

	if r.BankName == "" {
		verrs.Add("bankName", "Bank name is required")
	}

	if r.IFSCCode == "" {
		verrs.Add("ifscCode", "IFSC code is required")
	} else if !ifscPattern.MatchString(r.IFSCCode) {
		verrs.Add("ifscCode", "Invalid IFSC code format")
	}

	if verrs.HasErrors() {
		return verrs
	}
	return nil
}

// Transaction types as reported by the quiz history endpoint.
const (
	TypeQuizWin  = "quiz_win"
	TypeQuizLoss = "quiz_loss"
	TypeRecharge = "recharge"
)

// QuizResult is one entry of the backend's quiz history.
type QuizResult struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Amount    float64        `json:"amount"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Transaction is the wallet-ledger view of a quiz result.
type Transaction struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Credit    bool      `json:"credit"`
	CreatedAt time.Time `json:"created_at"`
}

// FromQuizResult maps a quiz history entry onto a transaction.
func FromQuizResult(q QuizResult) Transaction {
	t := Transaction{
		ID:        q.ID,
		Type:      q.Type,
		Amount:    q.Amount,
		CreatedAt: q.CreatedAt,
		Credit:    q.Type == TypeQuizWin || q.Type == TypeRecharge,
	}
	if t.Amount < 0 {
		t.Amount = -t.Amount
	}

	quizName := "Quiz"
	if q.Metadata != nil {
		if name, ok := q.Metadata["quiz_name"].(string); ok && name != "" {
			quizName = name
		}
	}

	switch q.Type {
	case TypeQuizWin:
		t.Title = "Quiz Win - " + quizName
	case TypeQuizLoss:
		t.Title = "Quiz Loss - " + quizName
	case TypeRecharge:
		t.Title = "Wallet Recharge"
	default:
		t.Title = "Transaction"
	}

	return t
}

// Filter narrows a transaction listing.
type Filter struct {
	Type  string
	Since time.Time
	Until time.Time
}

// Matches reports whether the transaction passes the filter.
func (f Filter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && t.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && t.CreatedAt.After(f.Until) {
		return false
	}
	return true
}
