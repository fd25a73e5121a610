package ocr

import (
	"errors"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	rpcstatus "google.golang.org/genproto/googleapis/rpc/status"
)

func TestDocumentTextReturnsTranscription(t *testing.T) {
	resp := &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{
			FullTextAnnotation: &visionpb.TextAnnotation{Text: "dear diary,\ntoday was fine"},
		}},
	}

	text, err := documentText(resp, "gs://bucket/uploads/x")
	if err != nil {
		t.Fatalf("documentText: %v", err)
	}
	if text != "dear diary,\ntoday was fine" {
		t.Errorf("text = %q", text)
	}
}

func TestDocumentTextErrors(t *testing.T) {
	tests := []struct {
		name string
		resp *visionpb.BatchAnnotateImagesResponse
	}{
		{"nil response", nil},
		{"no responses", &visionpb.BatchAnnotateImagesResponse{}},
		{
			"per-image error",
			&visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{
					Error: &rpcstatus.Status{Code: 7, Message: "permission denied on bucket"},
				}},
			},
		},
		{
			"missing annotation",
			&visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{}},
			},
		},
		{
			"blank text",
			&visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{
					FullTextAnnotation: &visionpb.TextAnnotation{Text: "   \n"},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := documentText(tt.resp, "gs://bucket/uploads/x")

			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Fatalf("error = %v, want ExtractionError", err)
			}
			if extractionErr.Op != "detect" {
				t.Errorf("Op = %q, want detect", extractionErr.Op)
			}
		})
	}
}
