package extract

import "unicode/utf8"

// extractText decodes a plain-text file. The bytes must already be valid
// UTF-8; anything else is a decode failure, not something to repair.
func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &Error{
			Kind:    DecodeError,
			Message: "unable to decode text file, expected UTF-8 content",
		}
	}
	return string(data), nil
}
