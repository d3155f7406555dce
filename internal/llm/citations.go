package llm

import (
	"regexp"
	"strings"
)

var citationPattern = regexp.MustCompile(`【[^】]*】`)

// StripCitations removes file-search citation markers such as 【4:2†source】.
func StripCitations(text string) string {
	return strings.TrimSpace(citationPattern.ReplaceAllString(text, ""))
}
