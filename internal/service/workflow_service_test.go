package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
)

type fakeStore struct {
	mu      sync.Mutex
	stored  map[string][]byte
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{stored: make(map[string][]byte)}
}

func (f *fakeStore) Store(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[key] = data
	return nil
}

func (f *fakeStore) Presign(key string, _ time.Duration) (string, error) {
	return "https://signed.example.com/" + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) URI(key string) string {
	return "fake://" + key
}

type fakeExtractor struct {
	text    string
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeExtractor) ExtractText(context.Context, string) (string, error) {
	f.calls++
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	return f.text, f.err
}

type fakeSummarizer struct {
	out   string
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.out != "" {
		return f.out, nil
	}
	return "summary of: " + text, nil
}

type fakeTranslator struct {
	lastInput string
	calls     int
	err       error
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls++
	f.lastInput = text
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("[%s] %s", target, text), nil
}

type fakeSynthesizer struct {
	calls int
	err   error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

type fakeRenderer struct {
	calls int
	err   error
}

func (f *fakeRenderer) Render(text string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF " + text), nil
}

type fakeBusPublisher struct {
	payloads [][]byte
}

func (f *fakeBusPublisher) Publish(_ context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

// fakeSessionStore hands out copies, like the redis repository does.
type fakeSessionStore struct {
	stored *entity.UserSession
}

func (f *fakeSessionStore) Save(_ context.Context, session *entity.UserSession) error {
	copied := *session
	f.stored = &copied
	return nil
}

func (f *fakeSessionStore) Find(_ context.Context, id string) (*entity.UserSession, error) {
	if f.stored == nil || f.stored.ID != id {
		return nil, nil
	}
	copied := *f.stored
	return &copied, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, _ string) error {
	f.stored = nil
	return nil
}

type workflowFixture struct {
	svc        IWorkflowService
	sessions   *fakeSessionStore
	store      *fakeStore
	extractor  *fakeExtractor
	summarizer *fakeSummarizer
	translator *fakeTranslator
	speech     *fakeSynthesizer
	renderer   *fakeRenderer
	publisher  *fakeBusPublisher
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	f := &workflowFixture{
		sessions:   &fakeSessionStore{},
		store:      newFakeStore(),
		extractor:  &fakeExtractor{text: "hello   world.next sentence"},
		summarizer: &fakeSummarizer{},
		translator: &fakeTranslator{},
		speech:     &fakeSynthesizer{},
		renderer:   &fakeRenderer{},
		publisher:  &fakeBusPublisher{},
	}
	tiers := newTestTierService(t)
	f.svc = NewWorkflowService(
		tiers,
		f.sessions,
		f.store,
		f.extractor,
		f.summarizer,
		f.translator,
		f.speech,
		f.renderer,
		f.publisher,
		noopLogger{},
	)
	return f
}

func stepStatus(t *testing.T, result *dto.UploadResult, name string) string {
	t.Helper()
	for _, s := range result.Steps {
		if s.Name == name {
			return s.Status
		}
	}
	t.Fatalf("step %q missing from report", name)
	return ""
}

func TestProcessUploadExtractionOnly(t *testing.T) {
	f := newWorkflowFixture(t)
	session := sessionOnTier(entity.TierFree)

	result, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{})
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	if result.ExtractedText != "hello   world.next sentence" {
		t.Errorf("ExtractedText = %q", result.ExtractedText)
	}
	if result.FinalText != "hello world. next sentence" {
		t.Errorf("FinalText = %q, want normalized text", result.FinalText)
	}
	if session.UploadCount != 1 {
		t.Errorf("UploadCount = %d, want 1", session.UploadCount)
	}
	if result.UploadsUsed != 1 || result.UploadLimit != 5 {
		t.Errorf("usage = %d/%d, want 1/5", result.UploadsUsed, result.UploadLimit)
	}
	if got := stepStatus(t, result, "text_extraction"); got != dto.StepCompleted {
		t.Errorf("text_extraction = %s", got)
	}
	if got := stepStatus(t, result, "summarization"); got != dto.StepSkipped {
		t.Errorf("summarization = %s, want skipped when not requested", got)
	}

	// uploaded image never survives extraction
	if len(f.store.stored) != 0 {
		t.Errorf("objects left in store: %v", f.store.stored)
	}
	if len(f.store.deleted) != 1 {
		t.Errorf("deleted %d objects, want 1", len(f.store.deleted))
	}
	if len(f.publisher.payloads) != 1 {
		t.Errorf("published %d messages, want 1", len(f.publisher.payloads))
	}
}

func TestProcessUploadRequiresTier(t *testing.T) {
	f := newWorkflowFixture(t)
	session := entity.NewSession() // no tier selected

	_, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{})

	if !errors.Is(err, dto.ErrTierNotSelected) {
		t.Fatalf("error = %v, want ErrTierNotSelected", err)
	}
	if f.extractor.calls != 0 || len(f.store.stored) != 0 {
		t.Error("no collaborator may run before the tier gate")
	}
	if session.UploadCount != 0 {
		t.Error("quota must not be touched")
	}
}

func TestProcessUploadQuotaExceeded(t *testing.T) {
	f := newWorkflowFixture(t)
	session := sessionOnTier(entity.TierFree)
	session.UploadCount = 5

	_, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{})

	var quota *dto.QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("error = %v, want QuotaExceededError", err)
	}
	if f.extractor.calls != 0 {
		t.Error("extraction must not run when over quota")
	}
	if session.UploadCount != 5 {
		t.Errorf("UploadCount = %d, want unchanged 5", session.UploadCount)
	}
}

func TestProcessUploadQuotaCheckedAgainstStoredSession(t *testing.T) {
	f := newWorkflowFixture(t)
	session := sessionOnTier(entity.TierFree)

	// The handler's copy was loaded before a concurrent request finished;
	// the store already holds the spent quota.
	stored := *session
	stored.UploadCount = 5
	f.sessions.stored = &stored

	_, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{})

	var quota *dto.QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("error = %v, want QuotaExceededError from stored count", err)
	}
	if session.UploadCount != 5 {
		t.Errorf("UploadCount = %d, want synced to stored 5", session.UploadCount)
	}
	if f.extractor.calls != 0 {
		t.Error("extraction must not run past a spent stored quota")
	}
}

func TestProcessUploadExtractionFailure(t *testing.T) {
	f := newWorkflowFixture(t)
	f.extractor.err = errors.New("vision unavailable")
	session := sessionOnTier(entity.TierPro)

	_, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{Summarize: true})
	if err == nil {
		t.Fatal("expected extraction error to abort the upload")
	}

	if session.UploadCount != 0 {
		t.Errorf("UploadCount = %d, failed extraction must not count", session.UploadCount)
	}
	if f.summarizer.calls != 0 {
		t.Error("no later step may run after extraction fails")
	}
	// cleanup still happens
	if len(f.store.stored) != 0 {
		t.Error("uploaded image must be deleted even on failure")
	}
}

func TestProcessUploadFeedForward(t *testing.T) {
	f := newWorkflowFixture(t)
	f.extractor.text = "full document text"
	f.summarizer.out = "short summary"
	session := sessionOnTier(entity.TierPro)

	result, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{
		Summarize:   true,
		TranslateTo: "es",
		Speech:      true,
		Pdf:         true,
	})
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	// translation consumes the summary, not the raw text
	if f.translator.lastInput != "short summary" {
		t.Errorf("translator input = %q, want the summary", f.translator.lastInput)
	}
	if result.FinalText != "[es] short summary" {
		t.Errorf("FinalText = %q", result.FinalText)
	}
	if result.AudioURL == "" {
		t.Error("expected presigned audio URL")
	}
	if result.PdfBase64 == "" {
		t.Error("expected inline pdf")
	}
	if session.UploadCount != 1 {
		t.Errorf("UploadCount = %d, want exactly 1", session.UploadCount)
	}

	for _, name := range []string{"text_extraction", "summarization", "translation", "speech_conversion", "pdf_download"} {
		if got := stepStatus(t, result, name); got != dto.StepCompleted {
			t.Errorf("%s = %s, want completed", name, got)
		}
	}
}

func TestProcessUploadLockedFeatures(t *testing.T) {
	f := newWorkflowFixture(t)
	session := sessionOnTier(entity.TierBasic)

	result, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{
		Summarize:   true,
		TranslateTo: "fr",
		Speech:      true,
		Pdf:         true,
	})
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	if got := stepStatus(t, result, "summarization"); got != dto.StepCompleted {
		t.Errorf("summarization = %s, basic includes it", got)
	}
	if got := stepStatus(t, result, "translation"); got != dto.StepSkippedLocked {
		t.Errorf("translation = %s, want skipped_locked", got)
	}
	if got := stepStatus(t, result, "speech_conversion"); got != dto.StepSkippedLocked {
		t.Errorf("speech_conversion = %s, want skipped_locked", got)
	}
	if got := stepStatus(t, result, "pdf_download"); got != dto.StepCompleted {
		t.Errorf("pdf_download = %s, basic includes it", got)
	}

	if f.translator.calls != 0 || f.speech.calls != 0 {
		t.Error("locked collaborators must not be called")
	}
}

func TestProcessUploadOptionalStepDegrades(t *testing.T) {
	f := newWorkflowFixture(t)
	f.extractor.text = "document"
	f.summarizer.err = errors.New("model overloaded")
	session := sessionOnTier(entity.TierPro)

	result, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{
		Summarize:   true,
		TranslateTo: "de",
	})
	if err != nil {
		t.Fatalf("a failed optional step must not fail the upload: %v", err)
	}

	if got := stepStatus(t, result, "summarization"); got != dto.StepFailed {
		t.Errorf("summarization = %s, want failed", got)
	}
	// the pipeline continues with the pre-failure text
	if f.translator.lastInput != "document" {
		t.Errorf("translator input = %q, want original text", f.translator.lastInput)
	}
	if result.FinalText != "[de] document" {
		t.Errorf("FinalText = %q", result.FinalText)
	}
	if session.UploadCount != 1 {
		t.Errorf("UploadCount = %d, degraded run still counts once", session.UploadCount)
	}
}

func TestProcessUploadRejectsConcurrentUpload(t *testing.T) {
	f := newWorkflowFixture(t)
	f.extractor.started = make(chan struct{})
	f.extractor.release = make(chan struct{})
	session := sessionOnTier(entity.TierEnterprise)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.ProcessUpload(context.Background(), session, []byte("img"), "image/png", dto.UploadOptions{})
		done <- err
	}()

	<-f.extractor.started

	_, err := f.svc.ProcessUpload(context.Background(), session, []byte("img2"), "image/png", dto.UploadOptions{})
	if !errors.Is(err, dto.ErrUploadInFlight) {
		t.Fatalf("error = %v, want ErrUploadInFlight", err)
	}

	close(f.extractor.release)
	if err := <-done; err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	if session.UploadCount != 1 {
		t.Errorf("UploadCount = %d, want 1", session.UploadCount)
	}
}

func TestUsageStatus(t *testing.T) {
	f := newWorkflowFixture(t)

	t.Run("no tier selected", func(t *testing.T) {
		session := entity.NewSession()
		res, err := f.svc.UsageStatus(session)
		if err != nil {
			t.Fatalf("UsageStatus: %v", err)
		}
		if res.Tier != nil {
			t.Errorf("Tier = %v, want nil", *res.Tier)
		}
		if res.CanUpload {
			t.Error("CanUpload must be false before a tier is selected")
		}
		// policy defaults to the free row for the numbers
		if res.Limit != 5 {
			t.Errorf("Limit = %d, want 5", res.Limit)
		}
	})

	t.Run("at the cap", func(t *testing.T) {
		session := sessionOnTier(entity.TierBasic)
		session.UploadCount = 50
		res, err := f.svc.UsageStatus(session)
		if err != nil {
			t.Fatalf("UsageStatus: %v", err)
		}
		if res.CanUpload {
			t.Error("CanUpload must be false at the cap")
		}
		if res.Used != 50 || res.Limit != 50 {
			t.Errorf("usage = %d/%d, want 50/50", res.Used, res.Limit)
		}
	})

	t.Run("unlimited", func(t *testing.T) {
		session := sessionOnTier(entity.TierEnterprise)
		session.UploadCount = 12345
		res, err := f.svc.UsageStatus(session)
		if err != nil {
			t.Fatalf("UsageStatus: %v", err)
		}
		if !res.CanUpload {
			t.Error("unlimited tier can always upload")
		}
		if res.Limit != entity.UploadLimitUnlimited {
			t.Errorf("Limit = %d, want -1", res.Limit)
		}
	})
}
