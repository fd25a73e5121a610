package service

import (
	"context"
	"time"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/repository/contract"

	"github.com/golang-jwt/jwt/v5"
)

type ISessionService interface {
	Create(ctx context.Context) (*entity.UserSession, string, error)
	CreateDev(ctx context.Context) (*entity.UserSession, string, error)
	Get(ctx context.Context, id string) (*entity.UserSession, error)
	Save(ctx context.Context, session *entity.UserSession) error
	Destroy(ctx context.Context, session *entity.UserSession) error
}

type sessionService struct {
	sessions  contract.SessionRepository
	jwtSecret string
	devMode   bool
}

func NewSessionService(sessions contract.SessionRepository, jwtSecret string, devMode bool) ISessionService {
	return &sessionService{
		sessions:  sessions,
		jwtSecret: jwtSecret,
		devMode:   devMode,
	}
}

// Create makes a fresh anonymous session and returns it with its bearer
// token. The token only names the session; auth state lives in the session.
func (s *sessionService) Create(ctx context.Context) (*entity.UserSession, string, error) {
	session := entity.NewSession()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := s.signToken(session.ID)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// CreateDev returns an already-authenticated session, refused unless the
// deployment explicitly enables development mode.
func (s *sessionService) CreateDev(ctx context.Context) (*entity.UserSession, string, error) {
	if !s.devMode {
		return nil, "", dto.ErrDevModeDisabled
	}

	session := entity.DevSession()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := s.signToken(session.ID)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*entity.UserSession, error) {
	session, err := s.sessions.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, dto.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) Save(ctx context.Context, session *entity.UserSession) error {
	return s.sessions.Save(ctx, session)
}

// Destroy resets the session before deleting it so a racing request that
// already holds the pointer sees an anonymous session, not a stale token.
func (s *sessionService) Destroy(ctx context.Context, session *entity.UserSession) error {
	session.Reset()
	return s.sessions.Delete(ctx, session.ID)
}

func (s *sessionService) signToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
