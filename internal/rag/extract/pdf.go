package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text out of every page, skips pages with no
// extractable text and joins the rest with a blank line. A PDF with zero
// extractable text yields an empty string, which is not an error.
func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed files; turn that into a
	// structured extraction failure instead of taking the process down.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &Error{
				Kind:    ExtractionError,
				Message: fmt.Sprintf("failed to extract text from PDF: %v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{
			Kind:    ExtractionError,
			Message: "failed to extract text from PDF",
			Err:     err,
		}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &Error{
				Kind:    ExtractionError,
				Message: fmt.Sprintf("failed to extract text from PDF page %d", i),
				Err:     err,
			}
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	return strings.Join(pages, "\n\n"), nil
}
