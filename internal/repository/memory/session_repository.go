package memory

import (
	"context"
	"time"

	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in process memory. An abandoned browser
// session simply expires out of the cache; no teardown hook runs.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() contract.SessionRepository {
	// Sessions live 24h, expired entries purged every 10 minutes
	c := cache.New(24*time.Hour, 10*time.Minute)
	return &SessionRepository{cache: c}
}

func (r *SessionRepository) Save(_ context.Context, session *entity.UserSession) error {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Find(_ context.Context, id string) (*entity.UserSession, error) {
	if x, found := r.cache.Get(id); found {
		return x.(*entity.UserSession), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}
