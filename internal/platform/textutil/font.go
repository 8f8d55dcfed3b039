package textutil

import "strings"

// DefaultFontFamily is used when no font expression is configured.
const DefaultFontFamily = "sans-serif"

const fontFamilyPrefix = "font-family:"

// NormalizeFontFamily reduces a CSS declaration such as `font-family: "Name", serif;`
// to its bare value (`"Name", serif`). Already-bare values pass through trimmed.
func NormalizeFontFamily(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= len(fontFamilyPrefix) && strings.EqualFold(value[:len(fontFamilyPrefix)], fontFamilyPrefix) {
		value = strings.TrimSpace(value[len(fontFamilyPrefix):])
	}
	for strings.HasSuffix(value, ";") {
		value = strings.TrimSpace(strings.TrimSuffix(value, ";"))
	}
	if value == "" {
		return DefaultFontFamily
	}
	return value
}
