package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxSanitizePasses = 8

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeName strips HTML from a display name. Entities are decoded after
// each pass and the result is stripped again until it stops changing, so
// encoded markup cannot come back as real markup.
func sanitizeName(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}
