package contract

import (
	"context"

	"visionvoice-be/internal/entity"
)

// SessionRepository stores one UserSession per browser session. Find
// returns (nil, nil) when the session expired or never existed.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.UserSession) error
	Find(ctx context.Context, id string) (*entity.UserSession, error)
	Delete(ctx context.Context, id string) error
}
