package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds workspace and node identifiers.
const maxIdentifierLength = 256

// workspaceIDRegex matches identifiers issued by the notes backend
// (lowercase base36 strings) as well as human-chosen slugs.
var workspaceIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateWorkspaceID validates a workspace identifier before it is placed in
// a URL path or a cache key.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - Maximum length of 256 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
//   - No path traversal sequences
func ValidateWorkspaceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidWorkspace, "workspace id cannot be empty")
	}
	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidWorkspace, "workspace id too long (max %d characters)", maxIdentifierLength)
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidWorkspace, "workspace id cannot contain '..'")
	}
	if !workspaceIDRegex.MatchString(id) {
		return New(ErrCodeInvalidWorkspace, "invalid workspace id: %q", id)
	}
	return nil
}

// ValidateNodeID validates a node identifier taken from a request path.
// Node ids are free-form in documents, so only emptiness, length and control
// characters are rejected.
func ValidateNodeID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxIdentifierLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a relative resource path (for example the tag data
// source paths configured in the tag catalog).
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

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}
	return nil
}
