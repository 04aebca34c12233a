// Package sfuapi wraps the SFU course outlines REST API.
package sfuapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/scraper"
)

// Section is one offering of a course in a term.
type Section struct {
	Text      string `json:"text"`
	Title     string `json:"title"`
	ClassType string `json:"classType"`
}

// Outline is the full course outline payload for one section.
type Outline struct {
	Info struct {
		Name          string `json:"name"`
		Title         string `json:"title"`
		Term          string `json:"term"`
		Description   string `json:"description"`
		Prerequisites string `json:"prerequisites"`
		GradingNotes  string `json:"gradingNotes"`
	} `json:"info"`
	Instructor []struct {
		Name string `json:"name"`
	} `json:"instructor"`
	CourseSchedule []struct {
		Campus    string `json:"campus"`
		Days      string `json:"days"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	} `json:"courseSchedule"`
	RequiredText []struct {
		Details string `json:"details"`
	} `json:"requiredText"`
}

// Client queries the course outlines API.
type Client struct {
	baseURL string
	fetcher *scraper.Client
}

// New creates a course outlines API client.
func New(baseURL string, fetcher *scraper.Client) *Client {
	return &Client{baseURL: baseURL, fetcher: fetcher}
}

// Sections fetches the lecture sections for a course. Only entries with
// classType "e" (enrollment sections) are returned.
func (c *Client) Sections(ctx context.Context, year, term, department, number string) ([]Section, error) {
	url := fmt.Sprintf("%s?%s/%s/%s/%s",
		c.baseURL, year, strings.ToLower(term), strings.ToUpper(department), strings.ToUpper(number))

	body, err := c.fetcher.GetBody(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap("sfuapi", "fetch_sections", err,
			"I couldn't reach the course outlines service. Please try again later.")
	}

	var all []Section
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, apperrors.NewFetchError(url, 0, fmt.Errorf("decode sections: %w", err))
	}

	var sections []Section
	for _, sec := range all {
		if sec.ClassType == "e" {
			sections = append(sections, sec)
		}
	}
	if len(sections) == 0 {
		return nil, apperrors.NewFetchError(url, 0, apperrors.ErrNotFound)
	}
	return sections, nil
}

// Outline fetches the outline for a specific section. The returned URL is
// the API endpoint the data came from.
func (c *Client) Outline(ctx context.Context, year, term, department, number, section string) (*Outline, string, error) {
	url := fmt.Sprintf("%s?%s/%s/%s/%s/%s",
		c.baseURL, year, strings.ToLower(term), strings.ToUpper(department), strings.ToUpper(number), section)

	body, err := c.fetcher.GetBody(ctx, url)
	if err != nil {
		return nil, url, apperrors.Wrap("sfuapi", "fetch_outline", err,
			"I couldn't reach the course outlines service. Please try again later.")
	}

	var outline Outline
	if err := json.Unmarshal(body, &outline); err != nil {
		return nil, url, apperrors.NewFetchError(url, 0, fmt.Errorf("decode outline: %w", err))
	}
	if outline.Info.Name == "" {
		return nil, url, apperrors.NewFetchError(url, 0, apperrors.ErrNotFound)
	}
	return &outline, url, nil
}
