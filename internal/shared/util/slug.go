package util

import (
	"strings"
	"unicode"
)

// Slug lowercases s and collapses every run of non-alphanumeric characters
// into a single hyphen. An empty result falls back to "doc" so slugs are
// always usable as filename components.
func Slug(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return "doc"
	}
	return b.String()
}

// DisplayName turns a key like "jane_doe" or "handbook-ack" into a
// space-separated title-cased name.
func DisplayName(key string) string {
	fields := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, f := range fields {
		lower := strings.ToLower(f)
		fields[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(fields, " ")
}
