package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates a node, group, or datablock name for use in the
// text format. The format is line-oriented, so names may not contain
// control characters or line breaks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters (including newlines)
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains control characters")
		}
	}

	return nil
}

// ValidateDatablockName validates a datablock name before it is wrapped in
// sentinel delimiters. A name containing a sentinel rune would corrupt the
// reference on the wire, so those are rejected up front.
func ValidateDatablockName(name string, sentinels string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if strings.ContainsAny(name, sentinels) {
		return New(ErrCodeInvalidInput, "datablock name %q contains a sentinel delimiter", name)
	}

	return nil
}

// ValidatePath validates a relative file path from an asset archive for
// safety. It prevents path traversal when extracting pack entries.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
