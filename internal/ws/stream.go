package ws

import (
	"context"
	"strings"
	"time"

	"github.com/manmad-web/sfubot/internal/metrics"
)

// sender abstracts Conn for streaming and tests.
type sender interface {
	Send(event any)
}

// Streamer delivers replies word by word for a typing effect.
type Streamer struct {
	delay   time.Duration
	metrics *metrics.Metrics
}

// NewStreamer creates a streamer pacing partials by delay.
// The metrics argument may be nil.
func NewStreamer(delay time.Duration, m *metrics.Metrics) *Streamer {
	return &Streamer{delay: delay, metrics: m}
}

// Stream turns the typing indicator off, emits cumulative partials with
// the final one flagged complete, then sends the full message. Stops
// early when ctx is canceled.
func (s *Streamer) Stream(ctx context.Context, c sender, response string) {
	c.Send(TypingEvent{Type: "typing", IsTyping: false})

	words := strings.Split(response, " ")
	var current strings.Builder
	for i, word := range words {
		if i > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)

		c.Send(StreamEvent{
			Type:       "stream",
			Content:    current.String(),
			IsComplete: i == len(words)-1,
		})
		if s.metrics != nil {
			s.metrics.StreamEventsTotal.Inc()
		}

		if s.delay > 0 && i < len(words)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.delay):
			}
		}
	}

	c.Send(MessageEvent{Type: "message", Content: response})
}
