package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeString strips all markup from user supplied text.
func SanitizeString(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
