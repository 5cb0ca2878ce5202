package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all HTML from free-text input. Descriptions, names and
// variation attributes are plain text; anything markup-shaped is removed
// before it reaches prompts or storage.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
