package classifier

import (
	"regexp"
	"strings"
)

// Extraction patterns for structured hints buried in free text. These are
// best effort; an empty result means the caller should fall back to the
// report's structured fields.
var (
	locationPattern = regexp.MustCompile(
		`(?i)\b(?:at|near|in|on|outside|behind|beside)\s+(?:the\s+)?` +
			`([A-Za-z][A-Za-z0-9 '&.-]{2,40}?)` +
			`(?:\s+(?:at|on|around|yesterday|today|tonight|last)\b|[.,;!?]|$)`)

	timePattern = regexp.MustCompile(
		`(?i)\b(\d{1,2}(?::\d{2})?\s*(?:am|pm)|\d{1,2}:\d{2})\b`)

	datePattern = regexp.MustCompile(
		`(?i)\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|` +
			`(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:,?\s+\d{4})?|` +
			`yesterday|today|tonight|last\s+night)\b`)
)

// ExtractLocation pulls a place phrase following a locative preposition.
func ExtractLocation(text string) string {
	match := locationPattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// ExtractDateTime pulls date and clock-time mentions from text.
func ExtractDateTime(text string) (date, clock string) {
	if m := datePattern.FindString(text); m != "" {
		date = strings.ToLower(strings.TrimSpace(m))
	}
	if m := timePattern.FindStringSubmatch(text); len(m) >= 2 {
		clock = strings.ToLower(strings.Join(strings.Fields(m[1]), ""))
	}
	return date, clock
}
