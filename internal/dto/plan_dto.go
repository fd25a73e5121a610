package dto

import "time"

type TierResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MonthlyCost float64  `json:"monthly_cost"`
	UploadLimit int      `json:"upload_limit"` // -1 = unlimited
	Features    []string `json:"features"`
	IsCurrent   bool     `json:"is_current"`
}

type SelectTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free basic pro enterprise"`
}

// UsageStatusResponse is returned by GET /api/usage.
type UsageStatusResponse struct {
	Tier        *string   `json:"tier"`
	Used        int       `json:"used"`
	Limit       int       `json:"limit"` // -1 = unlimited
	CanUpload   bool      `json:"can_upload"`
	WindowStart time.Time `json:"window_start"`
	ResetsAt    time.Time `json:"resets_at"`
}
