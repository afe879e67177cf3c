package user

import "strings"

// Profile is the last-known user record returned by the backend. It is a
// cache of identity and wallet fields, not the authoritative copy.
type Profile struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name,omitempty"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Photo          string  `json:"photo,omitempty"`
	GoogleID       string  `json:"googleId,omitempty"`
	AppleID        string  `json:"appleId,omitempty"`
	Coins          float64 `json:"coins"`
	AvailableCoins float64 `json:"availableCoins"`
}

// AvailableBalance returns the coins a withdrawal may draw on. Older backend
// responses only carry the total coins field.
func (p *Profile) AvailableBalance() float64 {
	if p.AvailableCoins > 0 {
		return p.AvailableCoins
	}
	return p.Coins
}

// Merge overlays the non-zero fields of other onto p and returns the result
// as a new Profile. p is not modified.
func (p *Profile) Merge(other *Profile) *Profile {
	merged := *p
	if other == nil {
		return &merged
	}
	if other.ID != "" {
		merged.ID = other.ID
	}
	if other.Name != "" {
		merged.Name = other.Name
	}
	if other.Email != "" {
		merged.Email = other.Email
	}
	if other.Phone != "" {
		merged.Phone = other.Phone
	}
	if other.Photo != "" {
		merged.Photo = other.Photo
	}
	if other.GoogleID != "" {
		merged.GoogleID = other.GoogleID
	}
	if other.AppleID != "" {
		merged.AppleID = other.AppleID
	}
	if other.Coins != 0 {
		merged.Coins = other.Coins
	}
	if other.AvailableCoins != 0 {
		merged.AvailableCoins = other.AvailableCoins
	}
	return &merged
}

// NormalizeEmail lowercases and trims an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
