// Package extract converts raw file bytes into plain UTF-8 text, keyed by
// the file's declared extension. Extraction is a pure transform: it never
// touches storage, and its outcome is reported as a structured result so
// the ingestion state machine can derive its terminal transition from it.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docintell/internal/rag/interfaces"
)

// Kind classifies why an extraction failed.
type Kind int

const (
	// UnsupportedType means the extension is outside the set of formats
	// the extractor understands.
	UnsupportedType Kind = iota
	// DecodeError means a text-typed input was not valid UTF-8.
	DecodeError
	// ExtractionError means a structured format could not be parsed
	// (corrupt PDF, OCR failure, broken archive).
	ExtractionError
)

func (k Kind) String() string {
	switch k {
	case UnsupportedType:
		return "unsupported type"
	case DecodeError:
		return "decode error"
	default:
		return "extraction error"
	}
}

// Error is the structured failure of an extraction attempt.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err if it is an extraction error.
func KindOf(err error) (Kind, bool) {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return 0, false
}

// Service routes bytes to the extractor for their declared extension.
type Service struct{}

// NewService creates the extractor service.
func NewService() *Service {
	return &Service{}
}

// Extract produces plain text from data according to the lowercased
// extension (with leading dot). Zero extractable text is not an error;
// downstream chunking of empty text simply yields zero chunks.
func (s *Service) Extract(ctx context.Context, data []byte, extension string) (string, error) {
	switch strings.ToLower(extension) {
	case ".txt", ".md":
		return extractText(data)
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	case ".xlsx":
		return extractXlsx(data)
	case ".png", ".jpg", ".jpeg", ".tiff":
		return extractImage(ctx, data)
	default:
		return "", &Error{
			Kind:    UnsupportedType,
			Message: fmt.Sprintf("unsupported file type: %s", extension),
		}
	}
}

// compile-time check to ensure Service implements the Extractor interface
var _ interfaces.Extractor = (*Service)(nil)
