package classifier

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[\p{L}\p{N}_.\-]+@[\p{L}\p{N}_.\-]+`)
	// Digits and spacing follow Unicode classes, not only ASCII.
	errorCodePattern = regexp.MustCompile(`(?i)error[\s\p{Z}\x1c-\x1f\x85]+\p{Nd}+|0x[0-9a-f]+`)
)

// ExtractEntities returns the first email-shaped and the first error-code-shaped
// substrings of text under the keys "email" and "error_code". Keys without a
// match are omitted.
func ExtractEntities(text string) map[string]string {
	entities := make(map[string]string)
	if m := emailPattern.FindString(text); m != "" {
		entities["email"] = m
	}
	if m := errorCodePattern.FindString(text); m != "" {
		entities["error_code"] = m
	}
	return entities
}
