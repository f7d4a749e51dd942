package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Q&A basics", "Q&A basics"},
		{"x < 3", "x < 3"},
		{"  Tom \"the\" O'Neil ", "Tom \"the\" O'Neil"},
		{"Go <i>basics</i>", "Go basics"},
		{"<script>alert(1)</script>hi", "hi"},
		{"<a href=\"http://x\">link</a>", "link"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, clean(tc.in), tc.in)
	}
}

func TestClean_DoesNotGrowText(t *testing.T) {
	in := strings.Repeat("<", 255)
	assert.Equal(t, in, clean(in))
	assert.Equal(t, "&&&", clean("&&&"))
}

func TestCheckLength(t *testing.T) {
	details := map[string]string{}
	checkLength(details, "quiz_title", strings.Repeat("é", 255), 255)
	assert.Empty(t, details)

	checkLength(details, "quiz_title", strings.Repeat("é", 256), 255)
	assert.Equal(t, "Ensure this field has no more than 255 characters.", details["quiz_title"])
}
