package dto

// UploadOptions selects which optional transforms the user asked for.
// Each one is still subject to the tier's feature set.
type UploadOptions struct {
	Summarize   bool   `json:"summarize"`
	TranslateTo string `json:"translate_to" validate:"omitempty,bcp47_language_tag"`
	Speech      bool   `json:"speech"`
	Pdf         bool   `json:"pdf"`
}

// Step status values for the upload report.
const (
	StepCompleted     = "completed"
	StepSkipped       = "skipped"        // not requested
	StepSkippedLocked = "skipped_locked" // tier does not include the feature
	StepFailed        = "failed"         // collaborator error, pipeline continued
)

type StepReport struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// UploadResult reports one upload-to-output cycle. FinalText is the output
// of the last successful transform (feed-forward semantics).
type UploadResult struct {
	ExtractedText string       `json:"extracted_text"`
	FinalText     string       `json:"final_text"`
	AudioURL      string       `json:"audio_url,omitempty"`
	PdfBase64     string       `json:"pdf_base64,omitempty"`
	Steps         []StepReport `json:"steps"`
	UploadsUsed   int          `json:"uploads_used"`
	UploadLimit   int          `json:"upload_limit"`
}

// DocumentProcessedMessage is published on the in-process bus after each
// successful upload.
type DocumentProcessedMessage struct {
	SessionID   string `json:"session_id"`
	Subject     string `json:"subject"`
	Tier        string `json:"tier"`
	UploadsUsed int    `json:"uploads_used"`
	Steps       int    `json:"steps"`
}
