package downloader

import (
	"regexp"
	"strings"
)

var (
	youtubeURLPattern = regexp.MustCompile(`^https?://(www\.)?(youtube\.com|youtu\.be)/`)
	hostileChars      = regexp.MustCompile(`[\\/*?:"<>|]+`)
)

// IsAcceptedURL reports whether url passes the syntactic YouTube gate
func IsAcceptedURL(url string) bool {
	return youtubeURLPattern.MatchString(url)
}

// Sanitize strips filesystem-hostile characters and surrounding whitespace
func Sanitize(name string) string {
	return strings.TrimSpace(hostileChars.ReplaceAllString(name, ""))
}
