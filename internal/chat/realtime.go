// Package chat implements the query pipeline that turns one user message
// into one reply: greeting, club matching, course lookups, realtime data,
// web-search style completion, grounded retrieval, and the LLM fallback,
// tried in that order.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/manmad-web/sfubot/internal/classify"
	"github.com/manmad-web/sfubot/internal/logger"
)

// Static replies for realtime topics without a live upstream.
const (
	courseScheduleInfo = "📅 **SFU Course Schedule Information:**\n\n" +
		"**Current Term:** Fall 2025\n" +
		"**Registration Period:** Check [SFU Student Services](https://www.sfu.ca/students.html) for current registration dates\n" +
		"**Class Schedule:** Visit [SFU Course Outlines](https://www.sfu.ca/outlines.html) for detailed class times\n\n" +
		"*For real-time schedule updates, please check your student portal or the official SFU website.*"

	libraryHoursInfo = "📚 **SFU Library Hours:**\n\n" +
		"**Bennett Library (Burnaby):**\n" +
		"• Monday-Thursday: 8:00 AM - 10:00 PM\n" +
		"• Friday: 8:00 AM - 6:00 PM\n" +
		"• Saturday: 10:00 AM - 6:00 PM\n" +
		"• Sunday: 12:00 PM - 8:00 PM\n\n" +
		"**Fraser Library (Surrey):**\n" +
		"• Monday-Thursday: 8:00 AM - 10:00 PM\n" +
		"• Friday: 8:00 AM - 6:00 PM\n" +
		"• Saturday: 10:00 AM - 6:00 PM\n" +
		"• Sunday: 12:00 PM - 8:00 PM\n\n" +
		"*Hours may vary during holidays and exam periods. Check [SFU Library](https://www.lib.sfu.ca/) for updates.*"

	campusEventsInfo = "🎉 **Upcoming SFU Campus Events:**\n\n" +
		"**This Week:**\n" +
		"• Student Orientation Events\n" +
		"• Career Fair 2025\n" +
		"• Research Symposium\n\n" +
		"**Ongoing:**\n" +
		"• Fitness Classes at the Recreation Centre\n" +
		"• Study Groups in the Library\n" +
		"• Cultural Events at the Student Union\n\n" +
		"*For the most current events, visit [SFU Events](https://www.sfu.ca/events.html) or check the SFU Student Union calendar.*"

	weatherFallback = "🌤️ **SFU Campus Weather:**\n\nI'm having trouble fetching current weather data. Please check the weather app or visit [Environment Canada](https://weather.gc.ca/) for current conditions in Burnaby, BC."

	newsFallback = "📰 **SFU News:**\n\nI'm having trouble fetching the latest news. Please visit [SFU News](https://www.sfu.ca/news.html) for the most recent announcements and updates."
)

// Realtime answers live-data questions (weather, news, time, schedules,
// library hours, events). Topics without a configured upstream fall back
// to static guidance text.
type Realtime struct {
	weatherKey string
	newsKey    string
	weatherURL string
	newsURL    string
	httpClient *http.Client
	log        *logger.Logger
	now        func() time.Time
}

// NewRealtime creates a realtime data source. The API keys are optional.
func NewRealtime(weatherKey, newsKey string, timeout time.Duration, log *logger.Logger) *Realtime {
	return &Realtime{
		weatherKey: weatherKey,
		newsKey:    newsKey,
		weatherURL: "https://api.openweathermap.org/data/2.5/weather",
		newsURL:    "https://newsapi.org/v2/everything",
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithModule("realtime"),
		now:        time.Now,
	}
}

// Lookup dispatches the message to a realtime topic handler.
// Returns false when the message asks for none of the known topics.
func (r *Realtime) Lookup(ctx context.Context, message string) (string, bool) {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, classify.WeatherKeywords...):
		return r.weather(ctx), true
	case containsAny(lower, classify.NewsKeywords...):
		return r.news(ctx), true
	case containsAny(lower, classify.TimeKeywords...):
		return r.currentTime(), true
	case containsAny(lower, classify.ScheduleKeywords...):
		return courseScheduleInfo, true
	case containsAny(lower, classify.LibraryKeywords...):
		return libraryHoursInfo, true
	case containsAny(lower, classify.EventsKeywords...):
		return campusEventsInfo, true
	}
	return "", false
}

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (r *Realtime) weather(ctx context.Context) string {
	if r.weatherKey == "" {
		return weatherFallback
	}

	query := url.Values{}
	query.Set("q", "Burnaby,BC,CA")
	query.Set("appid", r.weatherKey)
	query.Set("units", "metric")

	var weather weatherResponse
	if err := r.getJSON(ctx, r.weatherURL+"?"+query.Encode(), &weather); err != nil {
		r.log.WithError(err).Warn("weather fetch failed")
		return weatherFallback
	}
	if len(weather.Weather) == 0 {
		return weatherFallback
	}

	return fmt.Sprintf("🌤️ **Current Weather at SFU Campus (Burnaby):**\n\n"+
		"**Temperature:** %d°C\n"+
		"**Conditions:** %s\n"+
		"**Humidity:** %d%%\n"+
		"**Wind Speed:** %g m/s\n\n"+
		"*Data provided by OpenWeatherMap*",
		int(math.Round(weather.Main.Temp)),
		weather.Weather[0].Description,
		weather.Main.Humidity,
		weather.Wind.Speed)
}

type newsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"articles"`
}

func (r *Realtime) news(ctx context.Context) string {
	if r.newsKey == "" {
		return newsFallback
	}

	query := url.Values{}
	query.Set("q", "Simon Fraser University OR SFU")
	query.Set("apiKey", r.newsKey)
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", "5")

	var news newsResponse
	if err := r.getJSON(ctx, r.newsURL+"?"+query.Encode(), &news); err != nil {
		r.log.WithError(err).Warn("news fetch failed")
		return newsFallback
	}
	if len(news.Articles) == 0 {
		return newsFallback
	}

	var b strings.Builder
	b.WriteString("📰 **Latest SFU News & Announcements:**\n\n")
	for i, article := range news.Articles {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, article.Title)
		fmt.Fprintf(&b, "   %s\n", article.Description)
		fmt.Fprintf(&b, "   [Read more](%s)\n\n", article.URL)
	}
	b.WriteString("*Data provided by NewsAPI*")
	return b.String()
}

func (r *Realtime) currentTime() string {
	loc, err := time.LoadLocation("America/Vancouver")
	if err != nil {
		loc = time.UTC
	}
	local := r.now().In(loc).Format("Monday, January 2, 2006 at 03:04:05 PM")

	return fmt.Sprintf("🕐 **Current Time at SFU Campus:**\n\n"+
		"**%s** (Pacific Time)\n\n"+
		"*This is the current local time in Vancouver, BC where SFU is located.*", local)
}

func (r *Realtime) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func containsAny(lower string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
