package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/logger"
	"visionvoice-be/internal/repository/contract"
	"visionvoice-be/pkg/ocr"
	"visionvoice-be/pkg/pdfgen"
	"visionvoice-be/pkg/speech"
	"visionvoice-be/pkg/storage"
	"visionvoice-be/pkg/summarize"
	"visionvoice-be/pkg/textops"
	"visionvoice-be/pkg/translate"

	"github.com/google/uuid"
)

const audioURLTTL = 1 * time.Hour

type IWorkflowService interface {
	ProcessUpload(ctx context.Context, session *entity.UserSession, image []byte, contentType string, opts dto.UploadOptions) (*dto.UploadResult, error)
	UsageStatus(session *entity.UserSession) (*dto.UsageStatusResponse, error)
}

// workflowService runs the upload pipeline: gate on tier and quota, store
// the image, extract and normalize text, then feed it through the optional
// transforms in fixed order. The extracted text counts against quota once,
// right after extraction succeeds; failures in later steps degrade the
// result but never refund or re-charge the upload.
type workflowService struct {
	tiers     ITierService
	sessions  contract.SessionRepository
	store     storage.ObjectStore
	extractor ocr.Extractor
	summarize summarize.Summarizer
	translate translate.Translator
	speech    speech.Synthesizer
	pdf       pdfgen.Renderer
	publisher IPublisherService
	log       logger.ILogger

	// one in-flight upload per session
	locks sync.Map
}

func NewWorkflowService(
	tiers ITierService,
	sessions contract.SessionRepository,
	store storage.ObjectStore,
	extractor ocr.Extractor,
	summarizer summarize.Summarizer,
	translator translate.Translator,
	synthesizer speech.Synthesizer,
	renderer pdfgen.Renderer,
	publisher IPublisherService,
	log logger.ILogger,
) IWorkflowService {
	return &workflowService{
		tiers:     tiers,
		sessions:  sessions,
		store:     store,
		extractor: extractor,
		summarize: summarizer,
		translate: translator,
		speech:    synthesizer,
		pdf:       renderer,
		publisher: publisher,
		log:       log,
	}
}

func (s *workflowService) sessionLock(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *workflowService) refreshQuota(ctx context.Context, session *entity.UserSession) {
	if s.sessions == nil {
		return
	}
	stored, err := s.sessions.Find(ctx, session.ID)
	if err != nil {
		s.log.Warn("workflow", "failed to re-read session before quota check", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return
	}
	if stored == nil {
		return
	}
	session.UploadCount = stored.UploadCount
	session.WindowStart = stored.WindowStart
}

func (s *workflowService) ProcessUpload(ctx context.Context, session *entity.UserSession, image []byte, contentType string, opts dto.UploadOptions) (*dto.UploadResult, error) {
	mu := s.sessionLock(session.ID)
	if !mu.TryLock() {
		return nil, dto.ErrUploadInFlight
	}
	defer mu.Unlock()

	// The middleware loaded the session before this lock was held; a request
	// finishing in between may have spent quota the loaded copy predates.
	// Re-read the stored counters now that the lock serializes us.
	s.refreshQuota(ctx, session)

	// A tier must be explicitly chosen before any quota question is asked.
	if !session.HasTier() {
		return nil, dto.ErrTierNotSelected
	}
	if err := s.tiers.CheckLimit(session); err != nil {
		return nil, err
	}

	tier, err := s.tiers.Lookup(session.EffectiveTier())
	if err != nil {
		return nil, err
	}

	extracted, err := s.extract(ctx, session, image, contentType)
	if err != nil {
		return nil, err
	}

	// The upload is spent the moment extraction succeeds. Optional steps
	// after this point can fail without touching the counter.
	s.tiers.Increment(session)

	result := &dto.UploadResult{
		ExtractedText: extracted,
		UploadsUsed:   session.UploadCount,
		UploadLimit:   tier.UploadLimit,
	}
	result.Steps = append(result.Steps, dto.StepReport{Name: "text_extraction", Status: dto.StepCompleted})

	// Feed-forward: each completed transform replaces the working text.
	text := textops.Normalize(extracted)

	text = s.runSummarize(ctx, tier, opts, text, result)
	text = s.runTranslate(ctx, tier, opts, text, result)
	result.FinalText = text

	s.runSpeech(ctx, tier, opts, text, result)
	s.runPdf(tier, opts, text, result)

	s.publishProcessed(ctx, session, tier, result)

	return result, nil
}

// extract stores the image, runs text detection against it and deletes the
// object again. The image never outlives the extraction call.
func (s *workflowService) extract(ctx context.Context, session *entity.UserSession, image []byte, contentType string) (string, error) {
	key := fmt.Sprintf("uploads/%s/%s", session.ID, uuid.NewString())

	if err := s.store.Store(ctx, key, image, contentType); err != nil {
		return "", err
	}
	defer func() {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("workflow", "failed to delete uploaded image", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}()

	text, err := s.extractor.ExtractText(ctx, s.store.URI(key))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *workflowService) runSummarize(ctx context.Context, tier entity.Tier, opts dto.UploadOptions, text string, result *dto.UploadResult) string {
	if !opts.Summarize {
		result.Steps = append(result.Steps, dto.StepReport{Name: "summarization", Status: dto.StepSkipped})
		return text
	}
	if !tier.HasFeature(entity.CapabilitySummarization) {
		result.Steps = append(result.Steps, dto.StepReport{Name: "summarization", Status: dto.StepSkippedLocked})
		return text
	}

	summary, err := s.summarize.Summarize(ctx, text)
	if err != nil {
		s.log.Warn("workflow", "summarization failed", map[string]interface{}{"error": err.Error()})
		result.Steps = append(result.Steps, dto.StepReport{Name: "summarization", Status: dto.StepFailed, Message: err.Error()})
		return text
	}

	result.Steps = append(result.Steps, dto.StepReport{Name: "summarization", Status: dto.StepCompleted})
	return summary
}

func (s *workflowService) runTranslate(ctx context.Context, tier entity.Tier, opts dto.UploadOptions, text string, result *dto.UploadResult) string {
	if opts.TranslateTo == "" {
		result.Steps = append(result.Steps, dto.StepReport{Name: "translation", Status: dto.StepSkipped})
		return text
	}
	if !tier.HasFeature(entity.CapabilityTranslation) {
		result.Steps = append(result.Steps, dto.StepReport{Name: "translation", Status: dto.StepSkippedLocked})
		return text
	}

	translated, err := s.translate.Translate(ctx, text, opts.TranslateTo)
	if err != nil {
		s.log.Warn("workflow", "translation failed", map[string]interface{}{
			"target": opts.TranslateTo,
			"error":  err.Error(),
		})
		result.Steps = append(result.Steps, dto.StepReport{Name: "translation", Status: dto.StepFailed, Message: err.Error()})
		return text
	}

	result.Steps = append(result.Steps, dto.StepReport{Name: "translation", Status: dto.StepCompleted})
	return translated
}

func (s *workflowService) runSpeech(ctx context.Context, tier entity.Tier, opts dto.UploadOptions, text string, result *dto.UploadResult) {
	if !opts.Speech {
		result.Steps = append(result.Steps, dto.StepReport{Name: "speech_conversion", Status: dto.StepSkipped})
		return
	}
	if !tier.HasFeature(entity.CapabilitySpeechConversion) {
		result.Steps = append(result.Steps, dto.StepReport{Name: "speech_conversion", Status: dto.StepSkippedLocked})
		return
	}

	audio, err := s.speech.Synthesize(ctx, text)
	if err != nil {
		s.log.Warn("workflow", "speech synthesis failed", map[string]interface{}{"error": err.Error()})
		result.Steps = append(result.Steps, dto.StepReport{Name: "speech_conversion", Status: dto.StepFailed, Message: err.Error()})
		return
	}

	key := fmt.Sprintf("audio/%s.mp3", uuid.NewString())
	if err := s.store.Store(ctx, key, audio, "audio/mpeg"); err != nil {
		result.Steps = append(result.Steps, dto.StepReport{Name: "speech_conversion", Status: dto.StepFailed, Message: err.Error()})
		return
	}

	url, err := s.store.Presign(key, audioURLTTL)
	if err != nil {
		result.Steps = append(result.Steps, dto.StepReport{Name: "speech_conversion", Status: dto.StepFailed, Message: err.Error()})
		return
	}

	result.AudioURL = url
	result.Steps = append(result.Steps, dto.StepReport{Name: "speech_conversion", Status: dto.StepCompleted})
}

func (s *workflowService) runPdf(tier entity.Tier, opts dto.UploadOptions, text string, result *dto.UploadResult) {
	if !opts.Pdf {
		result.Steps = append(result.Steps, dto.StepReport{Name: "pdf_download", Status: dto.StepSkipped})
		return
	}
	if !tier.HasFeature(entity.CapabilityPdfDownload) {
		result.Steps = append(result.Steps, dto.StepReport{Name: "pdf_download", Status: dto.StepSkippedLocked})
		return
	}

	data, err := s.pdf.Render(text)
	if err != nil {
		s.log.Warn("workflow", "pdf rendering failed", map[string]interface{}{"error": err.Error()})
		result.Steps = append(result.Steps, dto.StepReport{Name: "pdf_download", Status: dto.StepFailed, Message: err.Error()})
		return
	}

	result.PdfBase64 = base64.StdEncoding.EncodeToString(data)
	result.Steps = append(result.Steps, dto.StepReport{Name: "pdf_download", Status: dto.StepCompleted})
}

func (s *workflowService) publishProcessed(ctx context.Context, session *entity.UserSession, tier entity.Tier, result *dto.UploadResult) {
	if s.publisher == nil {
		return
	}

	subject := ""
	if session.Identity != nil {
		subject = session.Identity.Subject
	}
	msg := dto.DocumentProcessedMessage{
		SessionID:   session.ID,
		Subject:     subject,
		Tier:        string(tier.ID),
		UploadsUsed: session.UploadCount,
		Steps:       len(result.Steps),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Warn("workflow", "failed to publish processed message", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
}

// UsageStatus reports the current window without consuming anything. It
// still applies the lazy window reset so the numbers are live.
func (s *workflowService) UsageStatus(session *entity.UserSession) (*dto.UsageStatusResponse, error) {
	if err := s.tiers.CheckLimit(session); err != nil {
		if _, ok := err.(*dto.QuotaExceededError); !ok {
			return nil, err
		}
	}

	tier, err := s.tiers.Lookup(session.EffectiveTier())
	if err != nil {
		return nil, err
	}

	var tierName *string
	if session.HasTier() {
		name := string(*session.Tier)
		tierName = &name
	}

	canUpload := session.HasTier() &&
		(tier.UploadLimit == entity.UploadLimitUnlimited || session.UploadCount < tier.UploadLimit)

	return &dto.UsageStatusResponse{
		Tier:        tierName,
		Used:        session.UploadCount,
		Limit:       tier.UploadLimit,
		CanUpload:   canUpload,
		WindowStart: session.WindowStart,
		ResetsAt:    session.WindowStart.Add(quotaWindow),
	}, nil
}
