// Package classify detects what kind of question a chat message is asking.
// Detection is intentionally cheap: exact matches, keyword lists, and small
// regular expressions. The expensive collaborators (course API, document
// index, LLM) only run after classification picks a lane.
package classify

import (
	"regexp"
	"strings"
)

// Intent identifies which pipeline lane should answer a message.
type Intent int

const (
	IntentGreeting Intent = iota
	IntentClub
	IntentSectionCode
	IntentCourse
	IntentRealtime
	IntentWebSearch
	IntentGeneral
)

func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentClub:
		return "club"
	case IntentSectionCode:
		return "section_code"
	case IntentCourse:
		return "course"
	case IntentRealtime:
		return "realtime"
	case IntentWebSearch:
		return "web_search"
	default:
		return "general"
	}
}

var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"good morning":   {},
	"good afternoon": {},
}

// stopwords are dropped during keyword extraction for club matching.
var stopwords = map[string]struct{}{
	"is": {}, "there": {}, "a": {}, "an": {}, "the": {}, "for": {},
	"club": {}, "clubs": {}, "at": {}, "sfu": {}, "any": {}, "do": {},
	"you": {}, "have": {}, "suggest": {}, "me": {}, "few": {}, "some": {},
	"i": {}, "can": {}, "join": {}, "want": {}, "to": {}, "find": {},
	"looking": {}, "in": {}, "university": {}, "uni": {},
}

// Realtime keyword groups, one per live-data topic. The realtime data
// source dispatches on the same groups, in this order.
var (
	WeatherKeywords  = []string{"weather", "temperature", "forecast"}
	NewsKeywords     = []string{"news", "announcement", "latest"}
	TimeKeywords     = []string{"time", "date", "what time"}
	ScheduleKeywords = []string{"schedule", "timetable", "class times"}
	LibraryKeywords  = []string{"library hours", "library open", "library closed"}
	EventsKeywords   = []string{"events", "activities", "what's happening"}
)

// RealtimeKeywordGroups lists every realtime group in dispatch order.
var RealtimeKeywordGroups = [][]string{
	WeatherKeywords,
	NewsKeywords,
	TimeKeywords,
	ScheduleKeywords,
	LibraryKeywords,
	EventsKeywords,
}

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	sectionRe    = regexp.MustCompile(`^[A-Za-z]{1,3}\d{1,3}$`)
	webSearchKws = []string{
		"professor", "professors", "faculty", "instructor", "teacher",
		"financial aid", "scholarship", "bursary", "tuition", "fees",
		"contact", "phone", "email", "address", "office hours",
		"admission", "application", "deadline", "requirements",
		"current", "latest", "recent", "updated", "new",
		"events", "news", "announcement", "schedule",
		"campus", "building", "location", "directions",
		"library", "hours", "services", "resources",
	}
)

// IsGreeting reports whether the whole message is a standalone greeting.
func IsGreeting(message string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(message))]
	return ok
}

// ExtractKeywords lowercases the message, strips punctuation, and returns
// the remaining words minus stopwords and single characters.
func ExtractKeywords(message string) []string {
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(message), "")
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// IsSectionCode reports whether the trimmed message is a bare section code
// such as "D100".
func IsSectionCode(message string) bool {
	return sectionRe.MatchString(strings.TrimSpace(message))
}

// NeedsRealtimeData reports whether the message asks for live information
// (weather, news, time, schedules, library hours, events).
func NeedsRealtimeData(message string) bool {
	lower := strings.ToLower(message)
	for _, group := range RealtimeKeywordGroups {
		if containsAny(lower, group) {
			return true
		}
	}
	return false
}

// ShouldUseWebSearch reports whether the message asks for dynamic content
// better served by an open-ended completion than the static corpus.
func ShouldUseWebSearch(message string) bool {
	return containsAny(strings.ToLower(message), webSearchKws)
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
