package extract

import (
	"regexp"
	"strings"
)

var (
	dupInlineOpen   = regexp.MustCompile(`\\\(\s*\\\(`)
	dupInlineClose  = regexp.MustCompile(`\\\)\s*\\\)`)
	dupDisplayOpen  = regexp.MustCompile(`\\\[\s*\\\[`)
	dupDisplayClose = regexp.MustCompile(`\\\]\s*\\\]`)
	leadingFence    = regexp.MustCompile(`(?im)^` + "```" + `(?:html|json)?\s*\n?`)
	trailingFence   = regexp.MustCompile(`(?im)\n?` + "```" + `\s*$`)
)

// CleanContent fixes the formatting slips the model makes most often:
// duplicated LaTeX delimiters and stray markdown code fences around the
// HTML body.
func CleanContent(content string) string {
	if content == "" {
		return ""
	}
	cleaned := content
	cleaned = dupInlineOpen.ReplaceAllString(cleaned, `\(`)
	cleaned = dupInlineClose.ReplaceAllString(cleaned, `\)`)
	cleaned = dupDisplayOpen.ReplaceAllString(cleaned, `\[`)
	cleaned = dupDisplayClose.ReplaceAllString(cleaned, `\]`)
	cleaned = leadingFence.ReplaceAllString(cleaned, "")
	cleaned = trailingFence.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
