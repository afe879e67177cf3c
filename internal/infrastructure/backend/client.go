package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/bot608/duocortex-accounts-page/config"
	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
	"github.com/bot608/duocortex-accounts-page/internal/domain/wallet"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// API paths, relative to the configured backend base URL.
const (
	pathLogin         = "auth/login"
	pathProfile       = "user/user-details"
	pathProfileUpdate = "user/update"
	pathWithdrawal    = "user/request-withdrawal"
	pathQuizHistory   = "quizzes/history"
)

// Client issues HTTP calls against the DuoCortex backend. A single shared
// base configuration handles bearer-token injection and global 401
// interception via sessionTransport; individual calls never attach
// credentials themselves.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// LoginResult is a successful credential or social-login exchange.
type LoginResult struct {
	Token     string
	User      *user.Profile
	IsNewUser bool
}

// NewClient creates a backend client. onUnauthorized fires on any 401 seen
// on any authenticated call.
func NewClient(cfg *config.BackendConfig, tokens TokenSource, onUnauthorized UnauthorizedHook, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + "/",
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &sessionTransport{
				base:           http.DefaultTransport,
				tokens:         tokens,
				onUnauthorized: onUnauthorized,
			},
		},
		log: log,
	}
}

// loginResponse is the wire shape of the unified login endpoint.
type loginResponse struct {
	Token     string        `json:"token"`
	User      *user.Profile `json:"user"`
	IsNewUser bool          `json:"isNewUser"`
	Message   string        `json:"message"`
}

// PasswordLogin exchanges email+password for a session token.
func (c *Client) PasswordLogin(ctx context.Context, email, password, deviceID string) (*LoginResult, error) {
	body := map[string]string{
		"email":     email,
		"password":  password,
		"device_id": deviceID,
	}

	var resp loginResponse
	status, err := c.do(ctx, http.MethodPost, pathLogin, body, &resp)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}

	if status < 200 || status >= 300 || resp.Token == "" {
		message := resp.Message
		if message == "" {
			message = "Login failed"
		}
		return nil, errors.NewBackendError(errors.ErrInvalidCredentials, status, message)
	}

	profile := resp.User
	if profile == nil {
		profile = &user.Profile{Email: email}
	}

	return &LoginResult{Token: resp.Token, User: profile, IsNewUser: resp.IsNewUser}, nil
}

// SocialLogin posts a normalized provider profile to the unified login
// endpoint. The backend decides whether this registers a new user or logs
// in an existing one.
func (c *Client) SocialLogin(ctx context.Context, profile map[string]any) (*LoginResult, error) {
	var resp loginResponse
	status, err := c.do(ctx, http.MethodPost, pathLogin, profile, &resp)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}

	if status < 200 || status >= 300 || resp.Token == "" {
		message := resp.Message
		if message == "" {
			message = "Authentication failed"
		}
		return nil, errors.NewBackendError(errors.ErrInvalidCredentials, status, message)
	}

	return &LoginResult{Token: resp.Token, User: resp.User, IsNewUser: resp.IsNewUser}, nil
}

// Validate confirms a stored token against the backend and returns the
// current profile. A blank token short-circuits without a network call.
// A 401 means the token is rejected (the global hook has already torn the
// session down by the time this returns); any other failure is a transient
// network problem and must not log the user out.
func (c *Client) Validate(ctx context.Context, token string) (*user.Profile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathProfile, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.NewBackendError(errors.ErrInvalidToken, resp.StatusCode, readMessage(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.NewBackendError(errors.ErrNetwork, resp.StatusCode, readMessage(resp.Body))
	}

	var profile user.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, "malformed profile response")
	}
	return &profile, nil
}

// UpdateProfile pushes profile edits to the backend and returns the
// updated record.
func (c *Client) UpdateProfile(ctx context.Context, profile *user.Profile) (*user.Profile, error) {
	var updated user.Profile
	status, err := c.do(ctx, http.MethodPut, pathProfileUpdate, profile, &updated)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	if err := classifyStatus(status, ""); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RequestWithdrawal submits a validated bank payout request.
func (c *Client) RequestWithdrawal(ctx context.Context, req *wallet.WithdrawalRequest) error {
	var resp struct {
		Message string `json:"message"`
	}
	status, err := c.do(ctx, http.MethodPost, pathWithdrawal, req, &resp)
	if err != nil {
		return errors.Wrap(errors.ErrNetwork, err.Error())
	}
	return classifyStatus(status, resp.Message)
}

// QuizHistory fetches the quiz/transaction history for the current session.
func (c *Client) QuizHistory(ctx context.Context) ([]wallet.QuizResult, error) {
	var resp struct {
		History []wallet.QuizResult `json:"history"`
	}
	status, err := c.do(ctx, http.MethodGet, pathQuizHistory, nil, &resp)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	if err := classifyStatus(status, ""); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// do sends a JSON request and decodes a JSON response. It returns the HTTP
// status and a transport error, if any; status interpretation is left to
// the caller.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil {
		// Tolerate empty or non-JSON bodies; status drives the outcome.
		json.NewDecoder(resp.Body).Decode(out)
	}

	return resp.StatusCode, nil
}

// classifyStatus maps a non-2xx status onto the error taxonomy.
func classifyStatus(status int, message string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return errors.NewBackendError(errors.ErrInvalidToken, status, message)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return errors.NewBackendError(errors.ErrValidation, status, message)
	default:
		return errors.NewBackendError(errors.ErrNetwork, status, message)
	}
}

func readMessage(r io.Reader) string {
	var resp struct {
		Message string `json:"message"`
	}
	json.NewDecoder(r).Decode(&resp)
	return resp.Message
}
