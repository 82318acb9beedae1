package downloader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAcceptedURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc123", true},
		{"http://youtube.com/watch?v=abc123", true},
		{"https://youtu.be/abc123", true},
		{"http://www.youtu.be/abc123", true},
		{"https://m.youtube.com/watch?v=abc123", false},
		{"ftp://example.com/x", false},
		{"https://example.com/watch?v=abc123", false},
		{"https://youtube.com.evil.example/x", false},
		{"https://www.youtube.com", false},
		{" https://www.youtube.com/watch?v=abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptedURL(tt.url))
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain name", "plain name"},
		{`a\b/c*d?e:f"g<h>i|j`, "abcdefghij"},
		{"  padded  ", "padded"},
		{" : leading hostile", "leading hostile"},
		{"///", ""},
		{"", ""},
		{"日本語 タイトル", "日本語 タイトル"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		" a : b ",
		"\t?x?\n",
		`: / \ * ? " < > |`,
		"title | part 1 / 2",
		" * leading and trailing * ",
		"clip ",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		assert.False(t, strings.ContainsAny(once, `\/*?:"<>|`), "input %q", in)
	}
}
