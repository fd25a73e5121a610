package speech

import (
	"context"
	"fmt"
	"os"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// Synthesizer renders text into spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SynthesisError wraps text-to-speech failures.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech: synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

type GoogleSynthesizer struct {
	client       *texttospeech.Client
	languageCode string
	voiceName    string
}

// NewGoogleSynthesizer creates the text-to-speech client, preferring inline
// credentials, then a credentials file, then the ambient default chain.
func NewGoogleSynthesizer(ctx context.Context, languageCode, voiceName string) (*GoogleSynthesizer, error) {
	var client *texttospeech.Client
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = texttospeech.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = texttospeech.NewClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = texttospeech.NewClient(ctx)
	}
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	return &GoogleSynthesizer{
		client:       client,
		languageCode: languageCode,
		voiceName:    voiceName,
	}, nil
}

// Synthesize renders MP3 audio. Whitespace-only input fails before any
// remote call is made.
func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SynthesisError{Err: fmt.Errorf("nothing to speak")}
	}

	resp, err := s.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.languageCode,
			Name:         s.voiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	return resp.AudioContent, nil
}

func (s *GoogleSynthesizer) Close() error {
	return s.client.Close()
}
