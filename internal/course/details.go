// Package course resolves course lookup requests: parsing department, number,
// term, and year out of free text and remembering the most recent lookup so a
// bare section code can complete it.
package course

import (
	"regexp"
	"strings"
	"time"
)

// Details identifies a course lookup. Department and Number come from the
// message; Term and Year fall back to the current academic term.
type Details struct {
	Year       string
	Term       string
	Department string
	Number     string
	Section    string
}

// Complete reports whether the details can drive a sections fetch.
func (d Details) Complete() bool {
	return d.Year != "" && d.Term != "" && d.Department != "" && d.Number != ""
}

var (
	yearRe    = regexp.MustCompile(`\b(20\d{2})\b`)
	termRe    = regexp.MustCompile(`(?i)\b(spring|summer|fall)\b`)
	deptRe    = regexp.MustCompile(`\b([A-Za-z]{3,4})\s+\d{3}\b`)
	numberRe  = regexp.MustCompile(`\b(\d{3}[A-Za-z]?)\b`)
	sectionRe = regexp.MustCompile(`\b([A-Za-z]{1,3}\d{1,3})\b`)
)

// majorSynonyms maps long-form program names (and their codes) to department
// codes. Checked in order against the uppercased message; a hit overrides the
// regex-derived department.
var majorSynonyms = []struct {
	Name string
	Code string
}{
	{"COMPUTING SCIENCE", "CMPT"},
	{"CMPT", "CMPT"},
	{"ENGINEERING SCIENCE", "ENSC"},
	{"ENSC", "ENSC"},
	{"MECHATRONIC SYSTEMS ENGINEERING", "MSE"},
	{"MSE", "MSE"},
	{"SUSTAINABLE ENERGY ENGINEERING", "SEE"},
	{"SEE", "SEE"},
	{"SOFTWARE SYSTEMS", "SOFT"},
	{"SOFT", "SOFT"},
}

// ExtractDetails parses course details out of a message. Year and term
// default to the current academic term at now; department and number stay
// empty when absent.
func ExtractDetails(message string, now time.Time) Details {
	defaultYear, defaultTerm := defaultAcademicTerm(now)

	d := Details{Year: defaultYear, Term: defaultTerm}
	if m := yearRe.FindStringSubmatch(message); m != nil {
		d.Year = m[1]
	}
	if m := termRe.FindStringSubmatch(message); m != nil {
		d.Term = strings.ToLower(m[1])
	}
	if m := deptRe.FindStringSubmatch(message); m != nil {
		d.Department = strings.ToUpper(m[1])
	}

	upper := strings.ToUpper(message)
	for _, syn := range majorSynonyms {
		if strings.Contains(upper, syn.Name) {
			d.Department = syn.Code
			break
		}
	}

	if m := numberRe.FindStringSubmatch(message); m != nil {
		d.Number = strings.ToUpper(m[1])
	}
	if m := sectionRe.FindStringSubmatch(message); m != nil {
		d.Section = strings.ToUpper(m[1])
	}
	return d
}

// defaultAcademicTerm maps the calendar month to the academic term:
// January through April is spring, May through August is summer, the rest
// of the year is fall.
func defaultAcademicTerm(now time.Time) (year, term string) {
	year = now.Format("2006")
	switch {
	case now.Month() <= time.April:
		term = "spring"
	case now.Month() <= time.August:
		term = "summer"
	default:
		term = "fall"
	}
	return year, term
}
