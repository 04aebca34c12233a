package rag

import (
	"fmt"
	"strings"
)

// Truncate shortens text to at most maxChars, cutting at the last sentence
// boundary inside the limit when one exists, and appends a read-more link
// to the source page.
func Truncate(text string, maxChars int, sourceURL string) string {
	if len(text) <= maxChars {
		return text
	}

	truncated := text[:maxChars]
	if lastPeriod := strings.LastIndex(truncated, "."); lastPeriod != -1 {
		truncated = truncated[:lastPeriod+1]
	}

	return truncated + fmt.Sprintf(
		`<br>...<br>For full details, please click <a href="%s" target="_blank">here</a>.`,
		sourceURL)
}
