package translate

import (
	"context"
	"fmt"
	"os"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Translator converts text into a target language named by a BCP 47 tag.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TranslationError wraps translation failures, including bad language tags.
type TranslationError struct {
	Target string
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate: to %q failed: %v", e.Target, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

type GoogleTranslator struct {
	client *gtranslate.Client
}

// NewGoogleTranslator creates the translation client, preferring inline
// credentials, then a credentials file, then the ambient default chain.
func NewGoogleTranslator(ctx context.Context) (*GoogleTranslator, error) {
	var client *gtranslate.Client
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = gtranslate.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = gtranslate.NewClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = gtranslate.NewClient(ctx)
	}
	if err != nil {
		return nil, &TranslationError{Err: err}
	}

	return &GoogleTranslator{client: client}, nil
}

// Translate sends text to the translation API. Empty input returns unchanged
// without a remote call.
func (t *GoogleTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	target, err := language.Parse(targetLang)
	if err != nil {
		return "", &TranslationError{Target: targetLang, Err: err}
	}

	out, err := t.client.Translate(ctx, []string{text}, target, nil)
	if err != nil {
		return "", &TranslationError{Target: targetLang, Err: err}
	}
	if len(out) == 0 {
		return "", &TranslationError{Target: targetLang, Err: fmt.Errorf("empty translation result")}
	}

	return out[0].Text, nil
}

func (t *GoogleTranslator) Close() error {
	return t.client.Close()
}
