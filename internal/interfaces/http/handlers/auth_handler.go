package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/bot608/duocortex-accounts-page/internal/application/dto"
	"github.com/bot608/duocortex-accounts-page/internal/application/providers"
	"github.com/bot608/duocortex-accounts-page/internal/application/services"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// AuthHandler handles session endpoints.
type AuthHandler struct {
	sessions  *services.SessionService
	loginPath string
	log       logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *services.SessionService, loginPath string, log logger.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, loginPath: loginPath, log: log}
}

// Login handles email/password login.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{User: profile})
}

// SocialLogin handles a provider assertion.
// POST /auth/social/:provider
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req dto.SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	assertion := providers.Assertion{
		IDToken:   req.IDToken,
		SubjectID: req.SubjectID,
		Email:     req.Email,
		Name:      req.Name,
		Photo:     req.Photo,
		DeviceID:  req.DeviceID,
	}

	provider := c.Param("provider")
	profile, err := h.sessions.SocialLogin(c.Request.Context(), provider, assertion)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{User: profile})
}

// GoogleCallback finishes the redirect flow: the provider hands back either
// an access token or an error in the query string. Success adopts the token
// and lands on the dashboard; failure bounces back to login with the
// provider's message preserved.
// GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	token, err := providers.ParseRedirectCallback(c.Request.URL.String())
	if err == nil {
		_, err = h.sessions.AdoptToken(c.Request.Context(), token)
	}

	if err != nil {
		h.log.Warn("google callback failed", logger.Provider("google"), logger.Error(err))

		message := errors.UserMessage(err, "Authentication failed")
		if errors.Is(err, errors.ErrAccountSuspended) {
			message = "Account suspended by admin"
		}
		c.Redirect(http.StatusFound, h.loginPath+"?error="+url.QueryEscape(message))
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session. Always succeeds for an already-signed-out
// caller.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully", "redirect": h.loginPath})
}

// Session reports the current lifecycle state and cached profile.
// GET /api/session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SessionResponse{
		State:         h.sessions.State(),
		Authenticated: h.sessions.Authenticated(),
		User:          h.sessions.CurrentUser(),
	})
}
