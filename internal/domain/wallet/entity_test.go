package wallet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot608/duocortex-accounts-page/pkg/errors"
)

func validRequest() WithdrawalRequest {
	return WithdrawalRequest{
		Amount:               150,
		AccountHolderName:    "Asha Rao",
		AccountNumber:        "123456789012",
		ConfirmAccountNumber: "123456789012",
		BankName:             "State Bank",
		IFSCCode:             "SBIN0001234",
	}
}

func TestWithdrawalRequest_ValidateAcceptsValidForm(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Validate(500))
}

func TestWithdrawalRequest_ValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*WithdrawalRequest)
		available float64
		field     string
		message   string
	}{
		{
			name:    "zero amount",
			mutate:  func(r *WithdrawalRequest) { r.Amount = 0 },
			field:   "amount",
			message: "Amount is required",
		},
		{
			name:    "below minimum",
			mutate:  func(r *WithdrawalRequest) { r.Amount = 99 },
			field:   "amount",
			message: "Minimum withdrawal amount is ₹100",
		},
		{
			name:      "exceeds available coins",
			mutate:    func(r *WithdrawalRequest) { r.Amount = 600 },
			available: 500,
			field:     "amount",
			message:   "Amount exceeds available coins",
		},
		{
			name:    "missing holder name",
			mutate:  func(r *WithdrawalRequest) { r.AccountHolderName = "  " },
			field:   "accountHolderName",
			message: "Account holder name is required",
		},
		{
			name: "account number too short",
			mutate: func(r *WithdrawalRequest) {
				r.AccountNumber = "12345678"
				r.ConfirmAccountNumber = "12345678"
			},
			field:   "accountNumber",
			message: "Account number must be 9-18 digits",
		},
		{
			name: "account number too long",
			mutate: func(r *WithdrawalRequest) {
				r.AccountNumber = "1234567890123456789"
				r.ConfirmAccountNumber = "1234567890123456789"
			},
			field:   "accountNumber",
			message: "Account number must be 9-18 digits",
		},
		{
			name:    "confirmation mismatch",
			mutate:  func(r *WithdrawalRequest) { r.ConfirmAccountNumber = "999999999999" },
			field:   "confirmAccountNumber",
			message: "Account numbers do not match",
		},
		{
			name:    "missing bank name",
			mutate:  func(r *WithdrawalRequest) { r.BankName = "" },
			field:   "bankName",
			message: "Bank name is required",
		},
		{
			name:    "malformed IFSC",
			mutate:  func(r *WithdrawalRequest) { r.IFSCCode = "SB1N0001234" },
			field:   "ifscCode",
			message: "Invalid IFSC code format",
		},
		{
			name:    "IFSC missing zero at fifth position",
			mutate:  func(r *WithdrawalRequest) { r.IFSCCode = "SBIN1001234" },
			field:   "ifscCode",
			message: "Invalid IFSC code format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			available := tt.available
			if available == 0 {
				available = 1000
			}

			err := req.Validate(available)
			require.ErrorIs(t, err, errors.ErrValidation)

			var verrs *errors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.message, verrs.Field(tt.field))
		})
	}
}

func TestWithdrawalRequest_NormalizeUppercasesIFSC(t *testing.T) {
	req := validRequest()
	req.IFSCCode = " sbin0001234 "
	req.AccountHolderName = "  Asha Rao  "

	require.NoError(t, req.Validate(1000))
	assert.Equal(t, "SBIN0001234", req.IFSCCode)
	assert.Equal(t, "Asha Rao", req.AccountHolderName)
}

func TestWithdrawalRequest_CollectsAllFieldErrors(t *testing.T) {
	req := WithdrawalRequest{}
	err := req.Validate(1000)
	require.ErrorIs(t, err, errors.ErrValidation)

	var verrs *errors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	for _, field := range []string{"amount", "accountHolderName", "accountNumber", "bankName", "ifscCode"} {
		assert.NotEmpty(t, verrs.Field(field), "expected an error for %s", field)
	}
}

func TestFromQuizResult(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		in         QuizResult
		wantTitle  string
		wantCredit bool
		wantAmount float64
	}{
		{
			name:       "quiz win uses quiz name",
			in:         QuizResult{Type: TypeQuizWin, Amount: 40, CreatedAt: now, Metadata: map[string]any{"quiz_name": "GK Daily"}},
			wantTitle:  "Quiz Win - GK Daily",
			wantCredit: true,
			wantAmount: 40,
		},
		{
			name:       "quiz loss is a debit with absolute amount",
			in:         QuizResult{Type: TypeQuizLoss, Amount: -25, CreatedAt: now},
			wantTitle:  "Quiz Loss - Quiz",
			wantCredit: false,
			wantAmount: 25,
		},
		{
			name:       "recharge",
			in:         QuizResult{Type: TypeRecharge, Amount: 100, CreatedAt: now},
			wantTitle:  "Wallet Recharge",
			wantCredit: true,
			wantAmount: 100,
		},
		{
			name:       "unknown type falls back",
			in:         QuizResult{Type: "bonus", Amount: 10, CreatedAt: now},
			wantTitle:  "Transaction",
			wantCredit: false,
			wantAmount: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := FromQuizResult(tt.in)
			assert.Equal(t, tt.wantTitle, tx.Title)
			assert.Equal(t, tt.wantCredit, tx.Credit)
			assert.Equal(t, tt.wantAmount, tx.Amount)
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := Transaction{Type: TypeQuizWin, CreatedAt: base}

	assert.True(t, Filter{}.Matches(tx))
	assert.True(t, Filter{Type: TypeQuizWin}.Matches(tx))
	assert.False(t, Filter{Type: TypeRecharge}.Matches(tx))
	assert.True(t, Filter{Since: base.Add(-time.Hour), Until: base.Add(time.Hour)}.Matches(tx))
	assert.False(t, Filter{Since: base.Add(time.Hour)}.Matches(tx))
	assert.False(t, Filter{Until: base.Add(-time.Hour)}.Matches(tx))
}
