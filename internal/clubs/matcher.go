package clubs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/manmad-web/sfubot/internal/classify"
)

// ListURL points to the authoritative club directory.
const ListURL = "https://go.sfss.ca/clubs/list.php"

// HasIntent reports whether any extracted keyword maps to club topics.
func HasIntent(message string) bool {
	for _, kw := range classify.ExtractKeywords(message) {
		if IsTopicKeyword(kw) {
			return true
		}
	}
	return false
}

// Match returns clubs relevant to the query. Direct name matches come
// first, then synonym-mapped matches; the fuzzy pass runs only when both
// of those are empty. Within each tier, results follow keyword order and
// then the catalog scan for that keyword.
func Match(query string) []string {
	keywords := classify.ExtractKeywords(query)

	seen := make(map[string]bool)
	var exact []string
	for _, kw := range keywords {
		for _, club := range catalog {
			if seen[club] {
				continue
			}
			if strings.Contains(strings.ToLower(club), kw) {
				seen[club] = true
				exact = append(exact, club)
			}
		}
	}

	var mapped []string
	for _, kw := range keywords {
		related, ok := keywordMap[kw]
		if !ok {
			continue
		}
		for _, term := range related {
			for _, club := range catalog {
				if seen[club] {
					continue
				}
				if strings.Contains(strings.ToLower(club), term) {
					seen[club] = true
					mapped = append(mapped, club)
				}
			}
		}
	}

	all := append(exact, mapped...)
	if len(all) > 0 {
		return all
	}

	var fuzzy []string
	for _, kw := range keywords {
		for _, club := range closeMatches(kw, catalog, 3, 0.6) {
			if !seen[club] {
				seen[club] = true
				fuzzy = append(fuzzy, club)
			}
		}
	}
	return fuzzy
}

// closeMatches finds up to n catalog entries whose names contain the word
// (or vice versa) with a length-ratio similarity of at least cutoff.
func closeMatches(word string, possibilities []string, n int, cutoff float64) []string {
	type scored struct {
		text       string
		similarity float64
	}
	wordLower := strings.ToLower(word)

	var matches []scored
	for _, possibility := range possibilities {
		possibilityLower := strings.ToLower(possibility)

		var similarity float64
		if strings.Contains(possibilityLower, wordLower) || strings.Contains(wordLower, possibilityLower) {
			longer, shorter := len(wordLower), len(possibilityLower)
			if shorter > longer {
				longer, shorter = shorter, longer
			}
			similarity = float64(longer) / float64(shorter)
			if similarity > 1.0 {
				similarity = 1.0
			}
		}

		if similarity >= cutoff {
			matches = append(matches, scored{text: possibility, similarity: similarity})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if len(matches) > n {
		matches = matches[:n]
	}

	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = m.text
	}
	return result
}

// FormatResponse renders the club answer for a query, showing at most the
// top three matches with a link to the full directory.
func FormatResponse(query string, matched []string) string {
	if len(matched) == 0 {
		return fmt.Sprintf(
			`❌ Couldn't find a club match for "%s".<br><br>🔗 Check all clubs at <a href="%s" target="_blank">SFU Club List</a>`,
			query, ListURL)
	}
	top := matched
	if len(top) > 3 {
		top = top[:3]
	}
	return fmt.Sprintf(
		`✅ Here are some SFU clubs related to "%s":<br>- %s<br><br>🔗 Explore more at <a href="%s" target="_blank">SFU Club List</a>`,
		query, strings.Join(top, "<br>- "), ListURL)
}
