package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailrelay/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips script injection",
			input:    `<p>Hello</p><script>alert('xss')</script>`,
			expected: "Hello",
		},
		{
			name:     "strips all HTML tags",
			input:    `<p>Hello <strong>world</strong></p>`,
			expected: "Hello world",
		},
		{
			name:     "strips event handlers",
			input:    `<img src="x" onerror="alert('xss')">`,
			expected: "",
		},
		{
			name:     "escapes ampersands",
			input:    "Tom & Jerry",
			expected: "Tom &amp; Jerry",
		},
		{
			name:     "escapes a stray angle bracket",
			input:    "1 < 2",
			expected: "1 &lt; 2",
		},
		{
			name:     "handles plain text",
			input:    "Ann",
			expected: "Ann",
		},
		{
			name:     "handles empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "strips iframe",
			input:    `<iframe src="https://evil.com"></iframe>content`,
			expected: "content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}
