package service

import (
	"errors"
	"testing"
	"time"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
)

func newTestTierService(t *testing.T) ITierService {
	t.Helper()
	svc, err := NewTierService("", noopLogger{})
	if err != nil {
		t.Fatalf("NewTierService: %v", err)
	}
	return svc
}

func sessionOnTier(id entity.TierID) *entity.UserSession {
	s := entity.NewSession()
	s.Tier = &id
	return s
}

func TestTierFeatures(t *testing.T) {
	svc := newTestTierService(t)

	tests := []struct {
		name string
		tier entity.TierID
		tag  entity.CapabilityTag
		want bool
	}{
		{"free has extraction", entity.TierFree, entity.CapabilityTextExtraction, true},
		{"free lacks summarization", entity.TierFree, entity.CapabilitySummarization, false},
		{"free lacks pdf", entity.TierFree, entity.CapabilityPdfDownload, false},
		{"basic has summarization", entity.TierBasic, entity.CapabilitySummarization, true},
		{"basic has pdf", entity.TierBasic, entity.CapabilityPdfDownload, true},
		{"basic lacks translation", entity.TierBasic, entity.CapabilityTranslation, false},
		{"basic lacks speech", entity.TierBasic, entity.CapabilitySpeechConversion, false},
		{"pro has translation", entity.TierPro, entity.CapabilityTranslation, true},
		{"pro has speech", entity.TierPro, entity.CapabilitySpeechConversion, true},
		{"enterprise has speech", entity.TierEnterprise, entity.CapabilitySpeechConversion, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasFeature(tt.tier, tt.tag)
			if err != nil {
				t.Fatalf("HasFeature: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasFeature(%s, %s) = %v, want %v", tt.tier, tt.tag, got, tt.want)
			}
		})
	}
}

func TestEnterpriseHasEveryCapability(t *testing.T) {
	svc := newTestTierService(t)

	for _, tag := range entity.AllCapabilities() {
		ok, err := svc.HasFeature(entity.TierEnterprise, tag)
		if err != nil {
			t.Fatalf("HasFeature: %v", err)
		}
		if !ok {
			t.Errorf("enterprise missing %s", tag)
		}
	}
}

func TestLookupUnknownTier(t *testing.T) {
	svc := newTestTierService(t)

	_, err := svc.Lookup(entity.TierID("platinum"))

	var unknown *dto.UnknownTierError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownTierError", err)
	}
}

func TestCheckLimitBlocksAtCap(t *testing.T) {
	svc := newTestTierService(t)
	session := sessionOnTier(entity.TierBasic)
	session.UploadCount = 49

	if err := svc.CheckLimit(session); err != nil {
		t.Fatalf("49 of 50 should pass: %v", err)
	}

	svc.Increment(session)
	err := svc.CheckLimit(session)

	var quota *dto.QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("error = %v, want QuotaExceededError", err)
	}
	if quota.Used != 50 || quota.Limit != 50 {
		t.Errorf("quota error = %d/%d, want 50/50", quota.Used, quota.Limit)
	}
}

func TestCheckLimitUnlimitedTier(t *testing.T) {
	svc := newTestTierService(t)
	session := sessionOnTier(entity.TierEnterprise)
	session.UploadCount = 100000

	if err := svc.CheckLimit(session); err != nil {
		t.Fatalf("unlimited tier must never block: %v", err)
	}
}

func TestCheckLimitResetsExpiredWindow(t *testing.T) {
	svc := newTestTierService(t)
	session := sessionOnTier(entity.TierFree)
	session.UploadCount = 5
	session.WindowStart = time.Now().Add(-31 * 24 * time.Hour)

	if err := svc.CheckLimit(session); err != nil {
		t.Fatalf("expired window should reset before checking: %v", err)
	}
	if session.UploadCount != 0 {
		t.Errorf("UploadCount = %d, want 0 after reset", session.UploadCount)
	}
	if time.Since(session.WindowStart) > time.Minute {
		t.Error("WindowStart not moved to now")
	}
}

func TestCheckLimitKeepsLiveWindow(t *testing.T) {
	svc := newTestTierService(t)
	session := sessionOnTier(entity.TierBasic)
	session.UploadCount = 3
	start := time.Now().Add(-29 * 24 * time.Hour)
	session.WindowStart = start

	if err := svc.CheckLimit(session); err != nil {
		t.Fatalf("CheckLimit: %v", err)
	}
	if session.UploadCount != 3 {
		t.Errorf("UploadCount = %d, want 3 (window still open)", session.UploadCount)
	}
	if !session.WindowStart.Equal(start) {
		t.Error("WindowStart must not move while the window is open")
	}
}
