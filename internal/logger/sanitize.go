package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxOriginLength is the maximum length for Origin header values in logs
	MaxOriginLength = 256
	// MaxErrorMessageLength is the maximum length for error messages in logs
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the maximum length for general strings in logs
	MaxGeneralStringLength = 2000
)

// SanitizePath sanitizes a URL path for safe logging
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeOrigin sanitizes an Origin header value for safe logging
func SanitizeOrigin(origin string) string {
	return SanitizeString(origin, MaxOriginLength)
}

// SanitizeString removes control characters, fixes invalid UTF-8 and truncates to maxLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = sanitizeFilterRunes(s)
	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

// sanitizeFilterRunes keeps printable runes, space and tab. Newlines are dropped to prevent log forging.
func sanitizeFilterRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// SanitizeError sanitizes an error message for safe logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}
