package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/manmad-web/sfubot/internal/logger"
)

// CorpusURLs lists the SFU pages indexed for retrieval.
var CorpusURLs = []string{
	"https://www.sfu.ca/students/calendar/2025/summer/courses/cmpt.html",
	"https://www.sfu.ca/students/calendar/2025/spring/programs/computing-science/major/bachelor-of-science-or-bachelor-of-arts.html",
	"https://www.sfu.ca/students/calendar/2025/spring/programs/computing-science/minor.html",
	"https://www.sfu.ca/students/admission/programs/a-z/c/computing-science/careers.html",
	"https://www.sfu.ca/students/calendar/2025/spring/areas-of-study/engineering-science.html",
	"https://www.sfu.ca/students/calendar/2025/spring/programs/computer-and-electronics-design/minor.html",
	"https://www.sfu.ca/students/calendar/2025/spring/programs/mechatronic-systems-engineering/major/bachelor-of-applied-science.html",
	"https://go.sfss.ca/clubs/list.php",
	"https://www.sfu.ca/fas/computing/people/faculty.html",
}

// calendarMajorPage gets its requirement sections extracted individually.
const calendarMajorPage = "https://www.sfu.ca/students/calendar/2025/spring/programs/computing-science/major/bachelor-of-science-or-bachelor-of-arts.html"

// Document is one extracted unit of corpus text.
type Document struct {
	Content string
	Source  string
	Heading string
}

var requirementHeadings = []string{
	"admission requirements",
	"lower division requirements",
	"upper division requirements",
	"continuation requirements",
	"internal transfer",
}

var (
	facultyEmailRe = regexp.MustCompile(`([a-zA-Z0-9._-]+@sfu\.ca)`)
	facultyPhoneRe = regexp.MustCompile(`(\d{3}\.\d{3}\.\d{4})`)
	facultyNameRe  = regexp.MustCompile(`([A-Z][a-z]+,\s*[A-Z][a-z]+)`)
)

// LoadCorpus fetches every corpus URL in parallel and returns all extracted
// documents. Individual page failures are logged and yield no documents;
// the corpus is built from whatever succeeded.
func LoadCorpus(ctx context.Context, client *Client, log *logger.Logger) []Document {
	results := make([][]Document, len(CorpusURLs))

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range CorpusURLs {
		g.Go(func() error {
			docs, err := LoadPage(gctx, client, url)
			if err != nil {
				log.WithModule("scraper").WithError(err).WithField("url", url).Warn("Corpus page failed to load")
				return nil
			}
			results[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	var all []Document
	for _, docs := range results {
		all = append(all, docs...)
	}
	return all
}

// LoadPage fetches one URL and extracts its documents: the whole body text
// plus page-specific structured pieces.
func LoadPage(ctx context.Context, client *Client, url string) ([]Document, error) {
	doc, err := client.GetDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	var docs []Document
	if body := strings.TrimSpace(doc.Find("body").Text()); body != "" {
		docs = append(docs, Document{Content: body, Source: url})
	}

	switch {
	case strings.Contains(url, "sfss.ca/clubs"):
		docs = append(docs, extractClubRows(doc, url)...)
	case strings.Contains(url, "fas/computing/people/faculty.html"):
		docs = append(docs, extractFaculty(doc, url)...)
	case url == calendarMajorPage:
		docs = append(docs, extractRequirementSections(doc, url)...)
	}

	docs = append(docs, extractCourseBlocks(doc, url)...)
	return docs, nil
}

// extractClubRows turns each SFSS club listing row into its own document.
func extractClubRows(doc *goquery.Document, url string) []Document {
	var docs []Document
	doc.Find(".col-md-12 > .row").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find("h4").Text())
		desc := strings.TrimSpace(sel.Find("p").Text())
		if name == "" || desc == "" {
			return
		}
		content := name + "\n" + desc
		if logo, ok := sel.Find("img").Attr("src"); ok && strings.TrimSpace(logo) != "" {
			content += "\nLogo: https://go.sfss.ca/" + strings.TrimSpace(logo)
		}
		docs = append(docs, Document{Content: content, Source: url, Heading: name})
	})
	return docs
}

// extractFaculty builds one text-only document per directory entry.
// Images are dropped so nothing downstream can describe them.
func extractFaculty(doc *goquery.Document, url string) []Document {
	doc.Find("img").Remove()

	var docs []Document
	doc.Find(".clf-fdi").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".faculty-name").Text())
		if len(name) <= 2 {
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Faculty Member: %s", name)
		if position := strings.TrimSpace(sel.Find(".position").Text()); position != "" {
			fmt.Fprintf(&b, "\nPosition: %s", position)
		}
		email := ""
		if href, ok := sel.Find("a[href^='mailto:']").Attr("href"); ok {
			email = strings.TrimPrefix(href, "mailto:")
		}
		if email == "" {
			email = strings.TrimSpace(sel.Find(".email span").Text())
		}
		if email != "" {
			fmt.Fprintf(&b, "\nEmail: %s", email)
		}
		phone := strings.TrimSpace(sel.Find("a[href^='tel:']").Text())
		if phone == "" {
			phone = strings.TrimSpace(sel.Find(".phone span").Text())
		}
		if phone != "" {
			fmt.Fprintf(&b, "\nPhone: %s", phone)
		}
		if office := strings.TrimSpace(sel.Find(".office span").Text()); office != "" {
			fmt.Fprintf(&b, "\nOffice Location: %s", office)
		}
		if profile, ok := sel.Find("a[href*='faculty-members']").Attr("href"); ok && profile != "" {
			if !strings.HasPrefix(profile, "http") {
				profile = "https://www.sfu.ca" + profile
			}
			fmt.Fprintf(&b, "\nProfile: %s", profile)
		}
		b.WriteString("\nDepartment: School of Computing Science, Simon Fraser University")

		docs = append(docs, Document{
			Content: b.String(),
			Source:  url,
			Heading: name + " - SFU Computing Science Faculty",
		})
	})

	if len(docs) > 0 {
		return docs
	}
	return extractFacultyFallback(doc, url)
}

// extractFacultyFallback scans raw text for "Lastname, Firstname" entries
// with an @sfu.ca address when the structured selectors find nothing.
func extractFacultyFallback(doc *goquery.Document, url string) []Document {
	var docs []Document
	seen := make(map[string]bool)
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		nameMatch := facultyNameRe.FindString(text)
		if nameMatch == "" || !strings.Contains(text, "@sfu.ca") {
			return
		}
		email := facultyEmailRe.FindString(text)
		if email == "" || seen[nameMatch] {
			return
		}
		seen[nameMatch] = true

		var b strings.Builder
		fmt.Fprintf(&b, "Faculty Member: %s\nEmail: %s", nameMatch, email)
		if phone := facultyPhoneRe.FindString(text); phone != "" {
			fmt.Fprintf(&b, "\nPhone: %s", phone)
		}
		b.WriteString("\nDepartment: School of Computing Science, Simon Fraser University")

		docs = append(docs, Document{
			Content: b.String(),
			Source:  url,
			Heading: nameMatch + " - SFU Computing Science Faculty",
		})
	})
	return docs
}

// extractRequirementSections captures each program requirement heading with
// the text up to the next heading.
func extractRequirementSections(doc *goquery.Document, url string) []Document {
	var docs []Document
	doc.Find("h2, h3").Each(func(_ int, sel *goquery.Selection) {
		heading := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(heading)

		matched := false
		for _, want := range requirementHeadings {
			if strings.Contains(lower, want) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}

		body := gatherSection(sel)
		if body == "" {
			return
		}
		docs = append(docs, Document{
			Content: heading + "\n" + body,
			Source:  url,
			Heading: heading,
		})
	})
	return docs
}

// gatherSection collects the text of siblings following a heading until the
// next h2/h3.
func gatherSection(start *goquery.Selection) string {
	var b strings.Builder
	for current := start.Next(); current.Length() > 0; current = current.Next() {
		tag := goquery.NodeName(current)
		if tag == "h2" || tag == "h3" {
			break
		}
		if text := strings.TrimSpace(current.Text()); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// extractCourseBlocks captures calendar course listings (link, title, units).
func extractCourseBlocks(doc *goquery.Document, url string) []Document {
	var docs []Document
	doc.Find("div.course").Each(func(_ int, sel *goquery.Selection) {
		link := strings.TrimSpace(sel.Find("a.course-link").Text())
		title := strings.TrimSpace(sel.Find("span.course-title").Text())
		units := strings.TrimSpace(sel.Find("span.units").Text())
		docs = append(docs, Document{
			Content: fmt.Sprintf("%s - %s - %s", link, title, units),
			Source:  url,
			Heading: link,
		})
	})
	return docs
}
