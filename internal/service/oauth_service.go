package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"visionvoice-be/internal/config"
	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/logger"

	"golang.org/x/oauth2"
)

const discoveryPath = "/.well-known/openid-configuration"

// providerEndpoints are the resolved URLs the login flow talks to.
type providerEndpoints struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	EndSessionEndpoint    string `json:"end_session_endpoint"`
}

type IOAuthService interface {
	BeginLogin(session *entity.UserSession) (string, error)
	HandleCallback(ctx context.Context, session *entity.UserSession, code, returnedState string) (*dto.CallbackResult, error)
	LogoutURL() (string, error)
}

type oauthService struct {
	cfg       config.ProviderConfig
	clientURL string
	endpoints providerEndpoints
	http      *http.Client
	log       logger.ILogger
}

// NewOAuthService resolves the provider endpoints once, at construction.
// Resolution tries discovery on the authority, then discovery on the hosted
// domain, then falls back to the well-known hosted-UI paths. Only when all
// three fail is the service unusable.
func NewOAuthService(cfg config.ProviderConfig, clientURL string, log logger.ILogger) (IOAuthService, error) {
	s := &oauthService{
		cfg:       cfg,
		clientURL: clientURL,
		http:      &http.Client{Timeout: 5 * time.Second},
		log:       log,
	}

	if eps, err := s.discover(cfg.AuthorityURL); err == nil {
		s.endpoints = *eps
		s.fillEndSessionEndpoint()
		return s, nil
	} else {
		log.Warn("oauth", "authority discovery failed, trying domain", map[string]interface{}{
			"authority": cfg.AuthorityURL,
			"error":     err.Error(),
		})
	}

	if cfg.DomainURL == "" {
		return nil, &dto.ConfigurationError{Reason: "provider discovery failed and no hosted domain configured"}
	}

	if eps, err := s.discover(cfg.DomainURL); err == nil {
		s.endpoints = *eps
		s.fillEndSessionEndpoint()
		return s, nil
	} else {
		log.Warn("oauth", "domain discovery failed, assuming hosted-UI paths", map[string]interface{}{
			"domain": cfg.DomainURL,
			"error":  err.Error(),
		})
	}

	s.endpoints = providerEndpoints{
		AuthorizationEndpoint: cfg.DomainURL + "/oauth2/authorize",
		TokenEndpoint:         cfg.DomainURL + "/oauth2/token",
		UserinfoEndpoint:      cfg.DomainURL + "/oauth2/userInfo",
		EndSessionEndpoint:    cfg.DomainURL + "/logout",
	}
	return s, nil
}

// fillEndSessionEndpoint covers providers whose discovery document omits
// end_session_endpoint (Cognito does) but still serve the hosted-UI logout
// page on the domain.
func (s *oauthService) fillEndSessionEndpoint() {
	if s.endpoints.EndSessionEndpoint == "" && s.cfg.DomainURL != "" {
		s.endpoints.EndSessionEndpoint = s.cfg.DomainURL + "/logout"
	}
}

func (s *oauthService) discover(baseURL string) (*providerEndpoints, error) {
	resp, err := s.http.Get(baseURL + discoveryPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery returned status %d", resp.StatusCode)
	}

	var eps providerEndpoints
	if err := json.NewDecoder(resp.Body).Decode(&eps); err != nil {
		return nil, err
	}
	if eps.AuthorizationEndpoint == "" || eps.TokenEndpoint == "" || eps.UserinfoEndpoint == "" {
		return nil, fmt.Errorf("discovery document missing required endpoints")
	}
	return &eps, nil
}

func (s *oauthService) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURL:  s.cfg.RedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  s.endpoints.AuthorizationEndpoint,
			TokenURL: s.endpoints.TokenEndpoint,
		},
	}
}

// BeginLogin mints a fresh state nonce, stores it on the session and returns
// the authorization URL. A second login attempt overwrites the old nonce.
func (s *oauthService) BeginLogin(session *entity.UserSession) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)

	session.OAuthState = state
	return s.oauth2Config().AuthCodeURL(state), nil
}

// HandleCallback consumes the redirect from the provider. An already-seen
// code is reported as a replay and nothing is exchanged. A state mismatch or
// any exchange failure drops the session back to anonymous.
func (s *oauthService) HandleCallback(ctx context.Context, session *entity.UserSession, code, returnedState string) (*dto.CallbackResult, error) {
	if code != "" && code == session.LastProcessedCode {
		s.log.Info("oauth", "callback code already processed, ignoring", map[string]interface{}{
			"session_id": session.ID,
		})
		res := &dto.CallbackResult{Replayed: true}
		if session.Identity != nil {
			res.Identity = dto.IdentityDTO{
				Subject: session.Identity.Subject,
				Name:    session.Identity.Name,
				Email:   session.Identity.Email,
			}
		}
		return res, nil
	}

	// The nonce is single-use either way: cleared on match before the
	// exchange, cleared on mismatch via Reset.
	if session.OAuthState != "" {
		if returnedState != session.OAuthState {
			expected := session.OAuthState
			session.Reset()
			return nil, &dto.StateMismatchError{Expected: expected, Got: returnedState}
		}
		session.OAuthState = ""
	}

	// Guard against the browser re-sending the same redirect before the
	// exchange runs, so a failed exchange is never retried with a dead code.
	session.LastProcessedCode = code

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http)
	token, err := s.oauth2Config().Exchange(ctx, code)
	if err != nil {
		session.Reset()
		return nil, &dto.TokenExchangeError{Err: err}
	}

	identity, err := s.fetchIdentity(ctx, token.AccessToken)
	if err != nil {
		session.Reset()
		return nil, &dto.IdentityLookupError{Err: err}
	}

	session.Authenticate(token.AccessToken, *identity)

	s.log.Info("oauth", "callback completed", map[string]interface{}{
		"session_id": session.ID,
		"subject":    identity.Subject,
	})

	return &dto.CallbackResult{
		AccessToken: token.AccessToken,
		Identity: dto.IdentityDTO{
			Subject: identity.Subject,
			Name:    identity.Name,
			Email:   identity.Email,
		},
	}, nil
}

func (s *oauthService) fetchIdentity(ctx context.Context, accessToken string) (*entity.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoints.UserinfoEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var claims struct {
		Sub      string `json:"sub"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, err
	}

	name := claims.Name
	if name == "" {
		name = claims.Username
	}

	return &entity.Identity{
		Subject: claims.Sub,
		Name:    name,
		Email:   claims.Email,
	}, nil
}

// LogoutURL points the browser at the provider's end-session endpoint so the
// hosted-UI cookie dies together with the local session. With no resolved
// end-session endpoint there is nowhere safe to send the browser.
func (s *oauthService) LogoutURL() (string, error) {
	if s.endpoints.EndSessionEndpoint == "" {
		return "", &dto.ConfigurationError{Reason: "no end-session endpoint resolved for this provider"}
	}
	q := url.Values{}
	q.Set("client_id", s.cfg.ClientID)
	q.Set("logout_uri", s.clientURL)
	return s.endpoints.EndSessionEndpoint + "?" + q.Encode(), nil
}
