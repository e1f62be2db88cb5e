package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no script tags",
			input:    "# Heading\n\nSome *markdown* content.",
			expected: "# Heading\n\nSome *markdown* content.",
		},
		{
			name:     "script tag",
			input:    "before<script>alert(1)</script>after",
			expected: "beforeafter",
		},
		{
			name:     "script tag with attributes",
			input:    `<script type="text/javascript">alert(1)</script>`,
			expected: "",
		},
		{
			name:     "mixed case",
			input:    "<SCRIPT>alert(1)</SCRIPT>",
			expected: "",
		},
		{
			name:     "spaced tags",
			input:    "< script >alert(1)< / script >",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitizeMarkdown(tc.input))
		})
	}
}
