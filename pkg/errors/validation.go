package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

const (
	maxNameLength = 128
	maxIDLength   = 64
	maxPathLength = 500
)

// namePattern admits names that start with a letter or digit and continue
// with letters, digits, spaces and . _ ' -.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._'-]*$`)

// ValidateName checks a blueprint or room name. Names are at most 128 bytes,
// start with a letter or digit and never contain separators, ".." or control
// characters.
func ValidateName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidName, "name cannot be empty")
	case len(name) > maxNameLength:
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	case strings.ContainsFunc(name, unicode.IsControl):
		return New(ErrCodeInvalidName, "name contains control characters")
	}
	for _, bad := range []string{"..", "/", `\`} {
		if strings.Contains(name, bad) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", bad)
		}
	}
	if !namePattern.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid name: %q", name)
	}
	return nil
}

// ValidateID checks a record identifier taken from a client, such as a URL
// path segment. IDs are ASCII letters, digits, '-' and '_' so they are safe
// as file names and storage keys.
func ValidateID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidInput, "id cannot be empty")
	case len(id) > maxIDLength:
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxIDLength)
	case strings.ContainsFunc(id, func(r rune) bool { return !isIDRune(r) }):
		return New(ErrCodeInvalidInput, "id contains invalid characters: %q", id)
	}
	return nil
}

func isIDRune(r rune) bool {
	return r == '-' || r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// ValidatePath checks a file path referenced from user input. Absolute paths
// are allowed; ".." segments and control characters are not.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case strings.ContainsFunc(path, unicode.IsControl):
		return New(ErrCodeInvalidPath, "path contains control characters")
	}
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	if slices.Contains(segments, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain .. segments")
	}
	return nil
}
