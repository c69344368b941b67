package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML and escapes the remaining text
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes every tag from s and HTML-escapes what is left, so the
// result is safe to place in an HTML text node or a quoted attribute.
// Used as the value filter for template variables substituted into HTML bodies.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}
