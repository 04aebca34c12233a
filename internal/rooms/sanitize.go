package rooms

import "strings"

// bannedWords is the moderation list applied to usernames and messages.
var bannedWords = []string{"spam", "inappropriate"}

// botTriggers are substrings that summon the assistant bot in a room.
var botTriggers = []string{
	"@asksfu", "ask sfu", "hey asksfu", "asksfu",
	"question:", "help with", "what is", "how to",
	"course", "cmpt", "club", "sfu",
}

const (
	maxUsernameLen = 20
	maxMessageLen  = 500
)

// usernameStrip lists characters removed from usernames.
const usernameStrip = `<>"'/`

// SanitizeUsername removes markup characters and caps the length.
func SanitizeUsername(username string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(usernameStrip, r) {
			return -1
		}
		return r
	}, username)
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > maxUsernameLen {
		cleaned = cleaned[:maxUsernameLen]
	}
	return cleaned
}

// SanitizeMessage removes angle brackets and caps the length.
func SanitizeMessage(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, message)
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > maxMessageLen {
		cleaned = cleaned[:maxMessageLen]
	}
	return cleaned
}

// IsInappropriate reports whether the text hits the moderation list.
func IsInappropriate(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range bannedWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// ShouldBotRespond reports whether a room message summons the bot.
func ShouldBotRespond(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range botTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
