package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the user info returned by the provider's userinfo endpoint.
type Identity struct {
	Subject  string `json:"subject"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// UserSession is the per-browser-session aggregate: auth status, identity,
// the oauth state nonce, replay guard, subscription tier and upload quota.
//
// AccessToken and Identity are set and cleared together, always through
// Authenticate and Reset; nothing else may touch them.
type UserSession struct {
	ID                string    `json:"id"`
	Authenticated     bool      `json:"authenticated"`
	Identity          *Identity `json:"identity,omitempty"`
	AccessToken       string    `json:"access_token,omitempty"`
	OAuthState        string    `json:"oauth_state,omitempty"`
	LastProcessedCode string    `json:"last_processed_code,omitempty"`

	// Tier is nil until the user explicitly picks a plan; nil blocks uploads
	// even though policy lookups treat a missing tier as free.
	Tier        *TierID   `json:"tier,omitempty"`
	UploadCount int       `json:"upload_count"`
	WindowStart time.Time `json:"window_start"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSession returns a fresh anonymous session with an open quota window.
func NewSession() *UserSession {
	now := time.Now()
	return &UserSession{
		ID:          uuid.NewString(),
		WindowStart: now,
		CreatedAt:   now,
	}
}

// DevSession is the explicit development-mode constructor: an
// always-authenticated free-tier session that never touched the provider.
// It exists as its own constructor so the bypass is auditable and cannot
// hide inside the callback path.
func DevSession() *UserSession {
	s := NewSession()
	tier := TierFree
	s.Tier = &tier
	s.Authenticate("dev-access-token", Identity{
		Subject: "dev-user",
		Name:    "Local Developer",
		Email:   "dev@localhost",
	})
	return s
}

// Authenticate records a successful callback: token and identity together.
func (s *UserSession) Authenticate(accessToken string, identity Identity) {
	s.AccessToken = accessToken
	s.Identity = &identity
	s.Authenticated = true
}

// Reset drops the session back to anonymous: token, identity and the state
// nonce are cleared together. The replay guard and quota counters survive
// so a retried redirect cannot re-exchange and usage is not forgiven.
func (s *UserSession) Reset() {
	s.Authenticated = false
	s.AccessToken = ""
	s.Identity = nil
	s.OAuthState = ""
}

// HasTier reports whether the user has explicitly selected a plan.
func (s *UserSession) HasTier() bool {
	return s.Tier != nil
}

// EffectiveTier maps an unselected tier to free for policy lookups. Callers
// gating uploads must check HasTier first; this is only the policy default.
func (s *UserSession) EffectiveTier() TierID {
	if s.Tier == nil {
		return TierFree
	}
	return *s.Tier
}
