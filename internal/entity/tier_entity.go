package entity

type TierID string

const (
	TierFree       TierID = "free"
	TierBasic      TierID = "basic"
	TierPro        TierID = "pro"
	TierEnterprise TierID = "enterprise"
)

type CapabilityTag string

const (
	CapabilityTextExtraction   CapabilityTag = "text_extraction"
	CapabilitySummarization    CapabilityTag = "summarization"
	CapabilityTranslation      CapabilityTag = "translation"
	CapabilitySpeechConversion CapabilityTag = "speech_conversion"
	CapabilityPdfDownload      CapabilityTag = "pdf_download"
)

// AllCapabilities returns every defined capability tag in pipeline order.
func AllCapabilities() []CapabilityTag {
	return []CapabilityTag{
		CapabilityTextExtraction,
		CapabilitySummarization,
		CapabilityTranslation,
		CapabilitySpeechConversion,
		CapabilityPdfDownload,
	}
}

// UploadLimitUnlimited marks a tier without a monthly upload cap.
const UploadLimitUnlimited = -1

// Tier is one row of the read-only tier table. UploadLimit counts uploads
// per rolling 30-day window; -1 = unlimited.
type Tier struct {
	ID          TierID          `json:"id"`
	Name        string          `json:"name"`
	MonthlyCost float64         `json:"monthly_cost"`
	UploadLimit int             `json:"upload_limit"`
	Features    []CapabilityTag `json:"features"`
	SortOrder   int             `json:"sort_order"`
}

// HasFeature reports whether the tier includes the given capability.
func (t Tier) HasFeature(tag CapabilityTag) bool {
	for _, f := range t.Features {
		if f == tag {
			return true
		}
	}
	return false
}

// DefaultTiers is the shipped four-tier table. It can be replaced wholesale
// from a JSON config source; the shape stays the same.
func DefaultTiers() []Tier {
	return []Tier{
		{
			ID:          TierFree,
			Name:        "Free",
			MonthlyCost: 0,
			UploadLimit: 5,
			Features:    []CapabilityTag{CapabilityTextExtraction},
			SortOrder:   1,
		},
		{
			ID:          TierBasic,
			Name:        "Basic",
			MonthlyCost: 9,
			UploadLimit: 50,
			Features: []CapabilityTag{
				CapabilityTextExtraction,
				CapabilitySummarization,
				CapabilityPdfDownload,
			},
			SortOrder: 2,
		},
		{
			ID:          TierPro,
			Name:        "Pro",
			MonthlyCost: 19,
			UploadLimit: 200,
			Features:    AllCapabilities(),
			SortOrder:   3,
		},
		{
			ID:          TierEnterprise,
			Name:        "Enterprise",
			MonthlyCost: 49,
			UploadLimit: UploadLimitUnlimited,
			Features:    AllCapabilities(),
			SortOrder:   4,
		},
	}
}
