package extract

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// extractImage runs optical character recognition over the image bytes and
// trims surrounding whitespace from the recognized text.
func extractImage(ctx context.Context, data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return "", &Error{
			Kind:    ExtractionError,
			Message: "failed to extract text from image",
			Err:     err,
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", &Error{
			Kind:    ExtractionError,
			Message: "optical character recognition failed",
			Err:     err,
		}
	}
	return strings.TrimSpace(text), nil
}
