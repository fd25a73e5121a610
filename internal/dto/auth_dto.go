package dto

type LoginURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	SessionToken     string `json:"session_token"`
}

type IdentityDTO struct {
	Subject string `json:"subject"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// CallbackResult is what HandleCallback hands back to the controller.
// Replayed means the code was already consumed and nothing was exchanged.
type CallbackResult struct {
	Replayed    bool        `json:"replayed"`
	AccessToken string      `json:"-"`
	Identity    IdentityDTO `json:"identity"`
}

type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Identity      *IdentityDTO `json:"identity,omitempty"`
	Tier          *string      `json:"tier,omitempty"`
	UploadCount   int          `json:"upload_count"`
}

type LogoutResponse struct {
	LogoutURL string `json:"logout_url"`
}
