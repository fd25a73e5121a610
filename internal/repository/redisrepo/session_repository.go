package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 24 * time.Hour

// SessionRepository stores sessions as JSON values in Redis so they survive
// a process restart. Same contract as the in-memory store.
type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) contract.SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.UserSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key(session.ID), payload, sessionTTL).Err()
}

func (r *SessionRepository) Find(ctx context.Context, id string) (*entity.UserSession, error) {
	payload, err := r.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var session entity.UserSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, key(id)).Err()
}
