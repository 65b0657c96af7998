// Package security validates user-supplied text and masks secrets before display.
package security

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSymbolLength bounds a ticker after normalization.
const MaxSymbolLength = 24

var (
	// Tickers, futures roots, share classes and FX/crypto pairs: AAPL, BRK.B, ES=F, EUR/USD, BTC-USD.
	symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9&./=:_-]*$`)

	credentialPattern = regexp.MustCompile(`(?i)(mongodb(?:\+srv)?://[^:/@]+:)([^@]+)(@)`)
)

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidSymbol reports whether a normalized symbol is well formed.
func ValidSymbol(symbol string) bool {
	return len(symbol) <= MaxSymbolLength && symbolPattern.MatchString(symbol)
}

// SanitizeText drops control characters except newlines and tabs.
func SanitizeText(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(SanitizeText(tag)))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// MaskCredential masks a secret for display, keeping a short prefix and suffix.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// MaskURI hides the password of a connection string.
func MaskURI(uri string) string {
	return credentialPattern.ReplaceAllString(uri, "${1}****${3}")
}
