package course

import (
	"fmt"
	"strings"

	"github.com/manmad-web/sfubot/internal/sfuapi"
)

// User-facing messages for the course lane.
const (
	// MsgOutlineNotFound is returned when a section's outline fetch fails.
	MsgOutlineNotFound = "Sorry, I couldn't find the course outline."

	// MsgAskCourseFirst is returned when a section code arrives with no
	// pending course lookup.
	MsgAskCourseFirst = "Please first ask for the course outline (e.g., CMPT 225 Summer 2025) before specifying the section."
)

// FormatSections renders the available sections list with the follow-up
// instruction.
func FormatSections(d Details, sections []sfuapi.Section) string {
	lines := make([]string, len(sections))
	for i, sec := range sections {
		lines[i] = fmt.Sprintf("%s - %s", sec.Text, sec.Title)
	}
	return fmt.Sprintf(
		"Here are the available sections for %s %s (%s %s):<br>%s<br><br>Please type the section code (e.g., D100) to get the course outline.",
		d.Department, d.Number, d.Term, d.Year, strings.Join(lines, "<br>"))
}

// FormatOutline renders the outline summary for one section.
func FormatOutline(outline *sfuapi.Outline) string {
	info := outline.Info

	campus := "Not available"
	if len(outline.CourseSchedule) > 0 && outline.CourseSchedule[0].Campus != "" {
		campus = outline.CourseSchedule[0].Campus
	}

	instructor := "Not available"
	if len(outline.Instructor) > 0 && outline.Instructor[0].Name != "" {
		instructor = outline.Instructor[0].Name
	}

	prerequisites := info.Prerequisites
	if prerequisites == "" {
		prerequisites = "None listed"
	}

	gradingNotes := info.GradingNotes
	if gradingNotes == "" {
		gradingNotes = "Not specified"
	}

	texts := "None listed"
	if len(outline.RequiredText) > 0 {
		var lines []string
		for _, t := range outline.RequiredText {
			if t.Details != "" {
				lines = append(lines, t.Details)
			}
		}
		if len(lines) > 0 {
			texts = strings.Join(lines, "<br>")
		}
	}

	schedule := "Not available"
	if len(outline.CourseSchedule) > 0 {
		lines := make([]string, len(outline.CourseSchedule))
		for i, s := range outline.CourseSchedule {
			lines[i] = fmt.Sprintf("%s: %s - %s", s.Days, s.StartTime, s.EndTime)
		}
		schedule = strings.Join(lines, "<br>")
	}

	return fmt.Sprintf(`%s (%s)<br><br>
<strong>Term:</strong> %s<br>
<strong>Campus:</strong> %s<br>
<strong>Instructor:</strong> %s<br>
<strong>Description:</strong> %s<br><br>
<strong>Prerequisites:</strong> %s<br><br>
<strong>Grading Notes:</strong> %s<br><br>
<strong>Required Texts:</strong> %s<br><br>
<strong>Schedule:</strong> %s<br><br>
<a href="%s" target="_blank">Here is the provided link for the course outline for further info</a>`,
		info.Title, info.Name,
		info.Term, campus, instructor, info.Description,
		prerequisites, gradingNotes, texts, schedule,
		outlineWebURL(outline))
}

// outlineWebURL derives the public outlines page link from the outline's
// term and name fields.
func outlineWebURL(outline *sfuapi.Outline) string {
	termParts := strings.Fields(strings.ToLower(outline.Info.Term))
	nameParts := strings.Fields(strings.ToLower(outline.Info.Name))
	if len(termParts) < 2 || len(nameParts) < 3 {
		return "https://www.sfu.ca/outlines.html"
	}
	return fmt.Sprintf("https://www.sfu.ca/outlines.html?%s/%s/%s/%s/%s",
		termParts[1], termParts[0], nameParts[0], nameParts[1], nameParts[2])
}
