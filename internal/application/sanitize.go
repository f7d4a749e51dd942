package application

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// clean strips all markup from user-supplied text. The policy escapes what it
// keeps, so entities are decoded again and "Q&A" stays "Q&A".
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(strings.TrimSpace(s))))
}

// checkLength records a detail for field when v is longer than its column.
func checkLength(details map[string]string, field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		details[field] = fmt.Sprintf("Ensure this field has no more than %d characters.", max)
	}
}
