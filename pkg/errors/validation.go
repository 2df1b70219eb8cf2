package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// documentIDRegex matches document ids: letters, digits, dot, dash and
// underscore, starting with a letter or digit.
var documentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentID validates a flow document id for safety.
// Ids become file names and storage keys, so they are held to a
// conservative character set.
//
// Validation rules:
//   - No empty ids
//   - Maximum length of 128 characters
//   - No control characters or path separators
//   - No path traversal sequences (..)
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "document id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "document id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "document id contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "document id cannot contain path traversal sequences (..)")
	}

	if !documentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid document id: %q", id)
	}

	return nil
}

// ValidatePath validates a file path given on the command line or in a
// script for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
