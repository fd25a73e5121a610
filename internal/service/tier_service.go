package service

import (
	"encoding/json"
	"os"
	"time"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/logger"
)

// quotaWindow is the rolling usage period. The window restarts lazily: the
// first quota check past the boundary resets the counter.
const quotaWindow = 30 * 24 * time.Hour

type ITierService interface {
	Tiers() []entity.Tier
	Lookup(id entity.TierID) (entity.Tier, error)
	HasFeature(id entity.TierID, tag entity.CapabilityTag) (bool, error)
	CheckLimit(session *entity.UserSession) error
	Increment(session *entity.UserSession)
}

type tierService struct {
	table map[entity.TierID]entity.Tier
	order []entity.Tier
	log   logger.ILogger
}

// NewTierService loads the tier table: the shipped defaults, or a wholesale
// replacement from a JSON file when configPath is set.
func NewTierService(configPath string, log logger.ILogger) (ITierService, error) {
	tiers := entity.DefaultTiers()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		var loaded []entity.Tier
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, err
		}
		tiers = loaded
		log.Info("tiers", "tier table loaded from config", map[string]interface{}{
			"path":  configPath,
			"tiers": len(tiers),
		})
	}

	table := make(map[entity.TierID]entity.Tier, len(tiers))
	for _, t := range tiers {
		table[t.ID] = t
	}

	return &tierService{table: table, order: tiers, log: log}, nil
}

func (s *tierService) Tiers() []entity.Tier {
	out := make([]entity.Tier, len(s.order))
	copy(out, s.order)
	return out
}

// Lookup never defaults: an id missing from the table is an error.
func (s *tierService) Lookup(id entity.TierID) (entity.Tier, error) {
	tier, ok := s.table[id]
	if !ok {
		return entity.Tier{}, &dto.UnknownTierError{Tier: string(id)}
	}
	return tier, nil
}

func (s *tierService) HasFeature(id entity.TierID, tag entity.CapabilityTag) (bool, error) {
	tier, err := s.Lookup(id)
	if err != nil {
		return false, err
	}
	return tier.HasFeature(tag), nil
}

// CheckLimit resets an expired quota window, then enforces the tier's upload
// cap. Callers must have verified the tier is selected; the effective tier
// is only the policy row.
func (s *tierService) CheckLimit(session *entity.UserSession) error {
	s.maybeResetWindow(session)

	tier, err := s.Lookup(session.EffectiveTier())
	if err != nil {
		return err
	}

	if tier.UploadLimit == entity.UploadLimitUnlimited {
		return nil
	}
	if session.UploadCount >= tier.UploadLimit {
		return &dto.QuotaExceededError{
			TierName: tier.Name,
			Limit:    tier.UploadLimit,
			Used:     session.UploadCount,
		}
	}
	return nil
}

// Increment counts one successful upload. It runs exactly once per upload,
// after text extraction succeeds.
func (s *tierService) Increment(session *entity.UserSession) {
	session.UploadCount++
}

func (s *tierService) maybeResetWindow(session *entity.UserSession) {
	if time.Since(session.WindowStart) < quotaWindow {
		return
	}
	s.log.Info("tiers", "quota window expired, resetting", map[string]interface{}{
		"session_id":   session.ID,
		"window_start": session.WindowStart,
		"used":         session.UploadCount,
	})
	session.UploadCount = 0
	session.WindowStart = time.Now()
}
