package dto

import (
	"github.com/bot608/duocortex-accounts-page/internal/domain/session"
	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
)

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SocialLoginRequest carries a provider assertion. Either an ID token or an
// already-extracted profile is acceptable; missing fields are filled from
// the token's claims.
type SocialLoginRequest struct {
	IDToken   string `json:"idToken"`
	SubjectID string `json:"subjectId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Photo     string `json:"photo"`
	DeviceID  string `json:"deviceId"`
}

// AuthResponse is returned by the login endpoints.
type AuthResponse struct {
	User      *user.Profile `json:"user"`
	IsNewUser bool          `json:"isNewUser,omitempty"`
}

// SessionResponse describes the current session for the frontend.
type SessionResponse struct {
	State         session.State `json:"state"`
	Authenticated bool          `json:"authenticated"`
	User          *user.Profile `json:"user,omitempty"`
}

// UpdateProfileRequest carries editable profile fields.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Photo string `json:"photo"`
}

// Profile converts the request to a partial profile for merging.
func (r *UpdateProfileRequest) Profile() *user.Profile {
	return &user.Profile{Name: r.Name, Phone: r.Phone, Photo: r.Photo}
}
