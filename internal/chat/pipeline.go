package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manmad-web/sfubot/internal/classify"
	"github.com/manmad-web/sfubot/internal/clubs"
	"github.com/manmad-web/sfubot/internal/course"
	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/genai"
	"github.com/manmad-web/sfubot/internal/history"
	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/metrics"
	"github.com/manmad-web/sfubot/internal/sfuapi"
)

const (
	greetingResponse = "Hello! How can I assist you today?"

	fallbackSystemPrompt = "You are AskSFU, a helpful AI assistant for Simon Fraser University. You can discuss SFU-related topics, courses, programs, clubs, and general topics. Use the conversation history to provide contextual responses."

	webSearchPromptFormat = `You are AskSFU, the AI assistant for Simon Fraser University. Provide helpful information about SFU-related topics including courses, programs, clubs, campus life, and general university information.

User question: Please provide information about: %s. Focus on Simon Fraser University context when relevant.`

	apologyResponse = "I'm sorry, I encountered an error while generating a response. Please try again later."

	warmingUpResponse = "I'm still loading the latest SFU information. Please try again in a moment."

	// fallbackHistoryTurns is how many recent messages the fallback LLM sees.
	fallbackHistoryTurns = 6

	// fallbackMaxTokens caps fallback and web-search completions.
	fallbackMaxTokens = 1000
)

// courseLookup is the slice of sfuapi.Client the pipeline needs.
type courseLookup interface {
	Sections(ctx context.Context, year, term, department, number string) ([]sfuapi.Section, error)
	Outline(ctx context.Context, year, term, department, number, section string) (*sfuapi.Outline, string, error)
}

// realtimeSource answers live-data questions.
type realtimeSource interface {
	Lookup(ctx context.Context, message string) (string, bool)
}

// groundedAnswerer answers from the document index.
type groundedAnswerer interface {
	Answer(ctx context.Context, sessionID, message string) (string, error)
}

// Pipeline routes one user message through the answer lanes in priority
// order and always produces a reply. Every reply is appended to the
// session history.
type Pipeline struct {
	history   *history.Store
	pending   *course.PendingStore
	courses   courseLookup
	realtime  realtimeSource
	answerer  groundedAnswerer
	completer genai.Completer
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New creates a pipeline. The metrics argument may be nil.
func New(hist *history.Store, pending *course.PendingStore, courses courseLookup, realtime realtimeSource, answerer groundedAnswerer, completer genai.Completer, log *logger.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		history:   hist,
		pending:   pending,
		courses:   courses,
		realtime:  realtime,
		answerer:  answerer,
		completer: completer,
		log:       log.WithModule("chat"),
		metrics:   m,
		now:       time.Now,
	}
}

// Respond answers the message. The reply is always non-empty; failures
// degrade to the fallback LLM and finally to a fixed apology.
func (p *Pipeline) Respond(ctx context.Context, sessionID, message string) string {
	start := time.Now()
	log := p.log.WithSessionID(sessionID)

	p.history.Append(sessionID, "user", message)

	intent, response := p.dispatch(ctx, sessionID, message, log)

	p.history.Append(sessionID, "assistant", response)
	p.record(intent, start)
	return response
}

// dispatch tries each lane in priority order and returns the winning
// intent with its reply.
func (p *Pipeline) dispatch(ctx context.Context, sessionID, message string, log *logger.Logger) (classify.Intent, string) {
	if classify.IsGreeting(message) {
		return classify.IntentGreeting, greetingResponse
	}

	if clubs.HasIntent(message) {
		matched := clubs.Match(strings.ToLower(message))
		return classify.IntentClub, clubs.FormatResponse(message, matched)
	}

	if classify.IsSectionCode(message) {
		return classify.IntentSectionCode, p.sectionReply(ctx, message, log)
	}

	details := course.ExtractDetails(message, p.now())
	if details.Complete() {
		if response, ok := p.courseReply(ctx, details, log); ok {
			return classify.IntentCourse, response
		}
		return classify.IntentCourse, p.fallbackReply(ctx, sessionID, message, log)
	}

	if classify.NeedsRealtimeData(message) {
		if data, ok := p.realtime.Lookup(ctx, message); ok {
			return classify.IntentRealtime, data
		}
	}

	if classify.ShouldUseWebSearch(message) {
		return classify.IntentWebSearch, p.webSearchReply(ctx, sessionID, message, log)
	}

	answer, err := p.answerer.Answer(ctx, sessionID, message)
	if err == nil {
		return classify.IntentGeneral, answer
	}
	if errors.Is(err, apperrors.ErrIndexNotReady) {
		return classify.IntentGeneral, warmingUpResponse
	}
	if !errors.Is(err, apperrors.ErrLowRelevance) {
		log.WithError(err).Warn("grounded answer failed")
	}

	return classify.IntentGeneral, p.fallbackReply(ctx, sessionID, message, log)
}

// sectionReply completes a pending course lookup with the section code.
func (p *Pipeline) sectionReply(ctx context.Context, message string, log *logger.Logger) string {
	details, ok := p.pending.Get()
	if !ok {
		log.WithError(apperrors.ErrNoPendingCourse).Info("section code without course")
		return course.MsgAskCourseFirst
	}

	section := strings.ToUpper(strings.TrimSpace(message))
	outline, _, err := p.courses.Outline(ctx, details.Year, details.Term, details.Department, details.Number, section)
	if err != nil {
		err = apperrors.Wrap("chat", "fetch_outline", err, course.MsgOutlineNotFound)
		log.WithError(err).WithField("section", section).Info("outline fetch failed")
		return apperrors.GetUserMessage(err)
	}

	return strings.ReplaceAll(course.FormatOutline(outline), "\n", "<br>")
}

// courseReply lists available sections for the extracted course.
// Returns ok=false when nothing is enrollable so the caller can fall back.
func (p *Pipeline) courseReply(ctx context.Context, details course.Details, log *logger.Logger) (string, bool) {
	p.pending.Set(details)

	sections, err := p.courses.Sections(ctx, details.Year, details.Term, details.Department, details.Number)
	if err != nil || len(sections) == 0 {
		log.WithError(err).WithFields(map[string]any{
			"department": details.Department,
			"number":     details.Number,
		}).Info("no sections available")
		return "", false
	}

	return course.FormatSections(details, sections), true
}

// webSearchReply asks the LLM directly for dynamic topics the corpus
// does not cover.
func (p *Pipeline) webSearchReply(ctx context.Context, sessionID, message string, log *logger.Logger) string {
	answer, err := p.completer.Complete(ctx, genai.Request{
		Prompt:    fmt.Sprintf(webSearchPromptFormat, message),
		MaxTokens: fallbackMaxTokens,
	})
	if err != nil {
		log.WithError(err).Warn("web search completion failed")
		return p.fallbackReply(ctx, sessionID, message, log)
	}
	return answer
}

// fallbackReply is the unconstrained LLM lane with conversation history.
func (p *Pipeline) fallbackReply(ctx context.Context, sessionID, message string, log *logger.Logger) string {
	recent := p.history.Recent(sessionID, fallbackHistoryTurns)
	turns := make([]genai.Turn, 0, len(recent))
	for _, msg := range recent {
		turns = append(turns, genai.Turn{Role: msg.Role, Content: msg.Content})
	}

	answer, err := p.completer.Complete(ctx, genai.Request{
		System:    fallbackSystemPrompt,
		History:   turns,
		Prompt:    message,
		MaxTokens: fallbackMaxTokens,
	})
	if err != nil {
		log.WithError(err).Error("fallback completion failed")
		return apologyResponse
	}

	return strings.ReplaceAll(answer, "\n", "<br>")
}

func (p *Pipeline) record(intent classify.Intent, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.PipelineQueriesTotal.WithLabelValues(intent.String(), "success").Inc()
	p.metrics.PipelineDurationSeconds.WithLabelValues(intent.String()).Observe(time.Since(start).Seconds())
}
