package extract

import (
	"bytes"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
)

// extractDocx reads a Word document and joins the text of all paragraph
// runs, one paragraph per line.
func extractDocx(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{
			Kind:    ExtractionError,
			Message: "failed to extract text from Word document",
			Err:     err,
		}
	}
	defer doc.Close()

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
