package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateProgramID validates a program identifier used in graph queries.
// It rejects identifiers that could only come from corrupt input.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - Maximum length of 256 characters
//   - Letters, digits, hyphens, and underscores only
func ValidateProgramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "program id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "program id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "program id contains invalid control characters")
		}
	}

	if !programIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid program id: %q", id)
	}

	return nil
}

// programIDRegex matches identifiers as they appear in PROGRAM-ID clauses.
var programIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateOutputPath validates an output file path for safety.
// It prevents null-byte injection and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateSourcePath validates a source path supplied on the command line.
// It rejects empty paths and Windows-style backslash paths, which the
// scanner's glob matching does not handle.
func ValidateSourcePath(path string) error {
	if err := ValidateOutputPath(path); err != nil {
		return err
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
