package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractClubRows(t *testing.T) {
	html := `<body><div class="col-md-12">
		<div class="row"><h4>Chess Club</h4><p>We play chess.</p><img src="logos/chess.png"></div>
		<div class="row"><h4>Empty Club</h4><p></p></div>
	</div></body>`

	docs := extractClubRows(parseHTML(t, html), "https://go.sfss.ca/clubs/list.php")

	require.Len(t, docs, 1)
	assert.Equal(t, "Chess Club", docs[0].Heading)
	assert.Contains(t, docs[0].Content, "We play chess.")
	assert.Contains(t, docs[0].Content, "Logo: https://go.sfss.ca/logos/chess.png")
}

func TestExtractFaculty(t *testing.T) {
	html := `<body>
	<div class="clf-fdi">
		<img src="photo.jpg">
		<span class="faculty-name">Jane Smith</span>
		<span class="position">Professor</span>
		<a href="mailto:jsmith@sfu.ca">email</a>
		<span class="office"><span>TASC 9001</span></span>
	</div>
	<div class="clf-fdi"><span class="faculty-name">X</span></div>
	</body>`

	docs := extractFaculty(parseHTML(t, html), "https://www.sfu.ca/fas/computing/people/faculty.html")

	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "Faculty Member: Jane Smith")
	assert.Contains(t, docs[0].Content, "Position: Professor")
	assert.Contains(t, docs[0].Content, "Email: jsmith@sfu.ca")
	assert.Contains(t, docs[0].Content, "Office Location: TASC 9001")
	assert.NotContains(t, docs[0].Content, "photo.jpg")
}

func TestExtractFacultyFallback(t *testing.T) {
	html := `<body><div class="directory">
		<p>Smith, Alice — alice@sfu.ca — 778.782.1234</p>
	</div></body>`

	docs := extractFaculty(parseHTML(t, html), "https://www.sfu.ca/fas/computing/people/faculty.html")

	require.NotEmpty(t, docs)
	assert.Contains(t, docs[0].Content, "Smith, Alice")
	assert.Contains(t, docs[0].Content, "alice@sfu.ca")
	assert.Contains(t, docs[0].Content, "778.782.1234")
}

func TestExtractRequirementSections(t *testing.T) {
	html := `<body>
	<h2>Lower Division Requirements</h2>
	<p>Complete CMPT 125.</p>
	<p>Complete MACM 101.</p>
	<h2>Unrelated Heading</h2>
	<p>Ignore this.</p>
	<h3>Upper Division Requirements</h3>
	<p>Complete 45 upper division units.</p>
	</body>`

	docs := extractRequirementSections(parseHTML(t, html), calendarMajorPage)

	require.Len(t, docs, 2)
	assert.Equal(t, "Lower Division Requirements", docs[0].Heading)
	assert.Contains(t, docs[0].Content, "Complete CMPT 125.")
	assert.Contains(t, docs[0].Content, "Complete MACM 101.")
	assert.NotContains(t, docs[0].Content, "Ignore this.")
	assert.Equal(t, "Upper Division Requirements", docs[1].Heading)
}

func TestExtractCourseBlocks(t *testing.T) {
	html := `<body><div class="course">
		<a class="course-link">CMPT 225</a>
		<span class="course-title">Data Structures and Programming</span>
		<span class="units">3</span>
	</div></body>`

	docs := extractCourseBlocks(parseHTML(t, html), "u")

	require.Len(t, docs, 1)
	assert.Equal(t, "CMPT 225 - Data Structures and Programming - 3", docs[0].Content)
}

func TestLoadPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Careers</h1><p>Great jobs await.</p></body></html>`))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 0)
	docs, err := LoadPage(context.Background(), client, srv.URL)

	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Contains(t, docs[0].Content, "Great jobs await.")
	assert.Equal(t, srv.URL, docs[0].Source)
}

func TestClientGetRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 2)
	resp, err := client.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, 2, attempts)
}

func TestClientGetNoRetryOnNotFound(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 3)
	_, err := client.Get(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
