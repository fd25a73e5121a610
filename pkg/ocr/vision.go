package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// Extractor turns a stored handwriting image into raw text.
type Extractor interface {
	ExtractText(ctx context.Context, imageURI string) (string, error)
}

// ExtractionError wraps Vision API failures.
type ExtractionError struct {
	Op  string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type VisionExtractor struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionExtractor creates the annotator client, preferring inline
// credentials, then a credentials file, then the ambient default chain.
func NewVisionExtractor(ctx context.Context) (*VisionExtractor, error) {
	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return nil, &ExtractionError{Op: "connect", Err: err}
	}

	return &VisionExtractor{client: client}, nil
}

// ExtractText runs document text detection against an object already in the
// bucket and returns the full-page transcription.
func (v *VisionExtractor) ExtractText(ctx context.Context, imageURI string) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{
				Source: &visionpb.ImageSource{ImageUri: imageURI},
			},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", &ExtractionError{Op: "detect", Err: err}
	}

	return documentText(resp, imageURI)
}

// documentText unpacks the single-image batch response. Annotation failures
// come back per image, not as a call error.
func documentText(resp *visionpb.BatchAnnotateImagesResponse, imageURI string) (string, error) {
	if resp == nil || len(resp.GetResponses()) == 0 {
		return "", &ExtractionError{Op: "detect", Err: fmt.Errorf("empty response for %s", imageURI)}
	}

	r := resp.GetResponses()[0]
	if e := r.GetError(); e != nil {
		return "", &ExtractionError{Op: "detect", Err: fmt.Errorf("annotation failed (code %d): %s", e.GetCode(), e.GetMessage())}
	}

	annotation := r.GetFullTextAnnotation()
	if annotation == nil || strings.TrimSpace(annotation.GetText()) == "" {
		return "", &ExtractionError{Op: "detect", Err: fmt.Errorf("no text found in %s", imageURI)}
	}

	return annotation.GetText(), nil
}

func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
