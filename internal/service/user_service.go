package service

import (
	"context"
	"time"

	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/logger"
	"visionvoice-be/internal/pkg/mailer"
	"visionvoice-be/internal/repository/contract"

	"github.com/google/uuid"
)

type IUserService interface {
	SyncOnLogin(ctx context.Context, session *entity.UserSession) error
	SelectTier(ctx context.Context, session *entity.UserSession, tierID entity.TierID) error
}

type userService struct {
	users  contract.UserRepository
	tiers  ITierService
	mailer mailer.IEmailService
	log    logger.ILogger
}

func NewUserService(users contract.UserRepository, tiers ITierService, email mailer.IEmailService, log logger.ILogger) IUserService {
	return &userService{
		users:  users,
		tiers:  tiers,
		mailer: email,
		log:    log,
	}
}

// SyncOnLogin upserts the user row from the provider identity and hydrates
// the session's tier from it, so a paid tier survives a new browser session.
// Identity fields follow whatever the provider reports now.
func (s *userService) SyncOnLogin(ctx context.Context, session *entity.UserSession) error {
	if s.users == nil || session.Identity == nil {
		return nil
	}
	identity := *session.Identity

	user, err := s.users.FindBySubject(ctx, identity.Subject)
	if err != nil {
		return err
	}

	if user == nil {
		now := time.Now()
		return s.users.Create(ctx, &entity.User{
			Id:        uuid.New(),
			Subject:   identity.Subject,
			Email:     identity.Email,
			FullName:  identity.Name,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if user.Tier != "" && session.Tier == nil {
		tier := entity.TierID(user.Tier)
		session.Tier = &tier
	}

	user.Email = identity.Email
	user.FullName = identity.Name
	user.UpdatedAt = time.Now()
	return s.users.Update(ctx, user)
}

// SelectTier validates the tier against the policy table, then applies it to
// the session and, when persistence is wired, the user row. A confirmation
// email goes out best-effort.
func (s *userService) SelectTier(ctx context.Context, session *entity.UserSession, tierID entity.TierID) error {
	tier, err := s.tiers.Lookup(tierID)
	if err != nil {
		return err
	}

	// Changing plans opens a fresh quota window; usage from the old plan
	// does not carry over.
	session.Tier = &tierID
	session.UploadCount = 0
	session.WindowStart = time.Now()

	if s.users != nil && session.Identity != nil {
		if err := s.users.UpdateTier(ctx, session.Identity.Subject, string(tierID)); err != nil {
			return err
		}
	}

	if s.mailer != nil && session.Identity != nil && session.Identity.Email != "" {
		email := session.Identity.Email
		go func() {
			if err := s.mailer.SendTierConfirmation(email, tier.Name, tier.MonthlyCost); err != nil {
				s.log.Warn("user", "tier confirmation email failed", map[string]interface{}{
					"email": email,
					"error": err.Error(),
				})
			}
		}()
	}

	s.log.Info("user", "tier selected", map[string]interface{}{
		"session_id": session.ID,
		"tier":       string(tierID),
	})
	return nil
}
