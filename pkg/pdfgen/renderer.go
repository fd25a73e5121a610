package pdfgen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const wrapWidth = 90

// Renderer lays text out as a downloadable PDF document.
type Renderer interface {
	Render(text string) ([]byte, error)
}

// RenderError wraps layout failures, including empty input.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("pdfgen: render failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

type FpdfRenderer struct{}

func NewFpdfRenderer() *FpdfRenderer {
	return &FpdfRenderer{}
}

// Render writes the text onto letter pages, wrapping long lines at a fixed
// column so handwriting transcriptions stay legible.
func (r *FpdfRenderer) Render(text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &RenderError{Err: fmt.Errorf("no text to render")}
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()

	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range wrapLine(line, wrapWidth) {
			pdf.CellFormat(0, 6, chunk, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return buf.Bytes(), nil
}

func wrapLine(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}

	var chunks []string
	for len(runes) > width {
		cut := width
		// Prefer breaking at the last space inside the window
		for i := width; i > 0; i-- {
			if runes[i-1] == ' ' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), " "))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
