package utils

import "github.com/microcosm-cc/bluemonday"

// Titles and comment bodies are plain text, so everything HTML is stripped.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from user supplied text to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
