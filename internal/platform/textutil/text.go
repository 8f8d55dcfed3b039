package textutil

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CapitalizeFirst upper-cases the first rune of value and leaves the rest untouched.
func CapitalizeFirst(value string) string {
	if value == "" {
		return value
	}
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return string(unicode.ToUpper(r)) + value[size:]
}

// DecodeSlug percent-decodes a URL path segment and turns hyphens into spaces.
// When the segment is not valid percent-encoding the raw value is used instead.
func DecodeSlug(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return strings.TrimSpace(strings.ReplaceAll(decoded, "-", " "))
}

// EncodeURIComponent escapes value for use inside a query component, encoding spaces as %20.
func EncodeURIComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// TruncateRunes returns at most limit runes of value.
func TruncateRunes(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims the ends.
func CollapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// IsAbsoluteURL reports whether raw parses with one of the given schemes and a host.
func IsAbsoluteURL(raw string, schemes ...string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if len(schemes) == 0 {
		return u.Scheme != ""
	}
	for _, scheme := range schemes {
		if strings.EqualFold(u.Scheme, scheme) {
			return true
		}
	}
	return false
}
