package digest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdesk/blogdigest/internal/domain"
	"github.com/growthdesk/blogdigest/pkg/httpclient"
)

func testService() *Service {
	return NewService(httpclient.NewRestyClient(5*time.Second, ""), nil, Config{})
}

func mustMonth(t *testing.T, raw string) domain.Month {
	t.Helper()
	m, err := domain.ParseMonth(raw)
	require.NoError(t, err)
	return m
}

func articlePage(title, published string) string {
	return fmt.Sprintf(`<html><head>
<meta property="og:title" content="%s"/>
<meta property="article:published_time" content="%s"/>
<meta name="description" content="Summary for %s."/>
</head></html>`, title, published, title)
}

// newBlogServer serves a full happy-path site: robots.txt pointing at a
// sitemap with candidates in and out of the month.
func newBlogServer(t *testing.T) *httptest.Server {
	t.Helper()

	var baseURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", baseURL)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset>
  <url><loc>%s/blog/second</loc><lastmod>2026-01-20T00:00:00Z</lastmod></url>
  <url><loc>%s/blog/first</loc><lastmod>2026-01-05T00:00:00Z</lastmod></url>
  <url><loc>%s/blog/2026/01/tokened</loc></url>
  <url><loc>%s/blog/stale</loc><lastmod>2025-12-30T00:00:00Z</lastmod></url>
  <url><loc>%s/blog/misdated</loc><lastmod>2026-01-28T00:00:00Z</lastmod></url>
  <url><loc>%s/other/page</loc><lastmod>2026-01-10T00:00:00Z</lastmod></url>
  <url><loc>%s/blog/first</loc><lastmod>2026-01-05T00:00:00Z</lastmod></url>
</urlset>`, baseURL, baseURL, baseURL, baseURL, baseURL, baseURL, baseURL)
	})
	mux.HandleFunc("/blog/first", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage("First", "2026-01-05T09:00:00Z"))
	})
	mux.HandleFunc("/blog/second", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage("Second", "2026-01-20T09:00:00Z"))
	})
	mux.HandleFunc("/blog/2026/01/tokened", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage("Tokened", "2026-01-12T09:00:00Z"))
	})
	// lastmod said January but the page itself is dated February.
	mux.HandleFunc("/blog/misdated", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage("Misdated", "2026-02-02T09:00:00Z"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	baseURL = srv.URL
	return srv
}

func TestRun_CollectsAndFiltersMonth(t *testing.T) {
	srv := newBlogServer(t)
	month := mustMonth(t, "2026-01")
	site := domain.NewSite(srv.URL + "/blog/")

	rep := testService().Run(context.Background(), month, []domain.Site{site})

	require.Len(t, rep.Sections, 1)
	articles := rep.Sections[0].Articles
	require.Len(t, articles, 3)

	assert.Equal(t, "First", articles[0].Title, "sorted by publish date ascending")
	assert.Equal(t, "Tokened", articles[1].Title)
	assert.Equal(t, "Second", articles[2].Title)

	for _, a := range articles {
		assert.NotEmpty(t, a.Title)
		assert.NotEmpty(t, a.URL)
		assert.True(t, month.Contains(a.PublishedAt))
	}
}

func TestRun_SiteFailureIsIsolated(t *testing.T) {
	good := newBlogServer(t)
	bad := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(bad.Close)

	month := mustMonth(t, "2026-01")
	sites := []domain.Site{
		domain.NewSite(bad.URL + "/blog/"),
		domain.NewSite(good.URL + "/blog/"),
	}

	rep := testService().Run(context.Background(), month, sites)

	require.Len(t, rep.Sections, 2, "every site gets a section, failed or not")
	assert.Empty(t, rep.Sections[0].Articles, "failed site renders as no articles")
	assert.Len(t, rep.Sections[1].Articles, 3, "the run continued past the failure")
}

func TestRun_FeedFallback(t *testing.T) {
	var baseURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel>
  <title>Example Blog</title>
  <item>
    <title>Inside the month</title>
    <link>%s/posts/in</link>
    <pubDate>Thu, 15 Jan 2026 10:00:00 +0000</pubDate>
    <description>Feed summary. Extra sentence. Dropped sentence.</description>
  </item>
  <item>
    <title>Outside the month</title>
    <link>%s/posts/out</link>
    <pubDate>Sun, 15 Feb 2026 10:00:00 +0000</pubDate>
  </item>
</channel></rss>`, baseURL, baseURL)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	baseURL = srv.URL

	month := mustMonth(t, "2026-01")
	rep := testService().Run(context.Background(), month, []domain.Site{domain.NewSite(srv.URL + "/")})

	require.Len(t, rep.Sections, 1)
	articles := rep.Sections[0].Articles
	require.Len(t, articles, 1, "only the in-month feed item survives")
	assert.Equal(t, "Inside the month", articles[0].Title)
	assert.Equal(t, "Feed summary. Extra sentence.", articles[0].Summary)
}

func TestFilterCandidates(t *testing.T) {
	month := mustMonth(t, "2026-01")
	in := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	entries := []domain.Entry{
		{Loc: "https://e.com/blog/a", LastMod: &in},
		{Loc: "https://e.com/blog/a", LastMod: &in}, // duplicate
		{Loc: "https://e.com/blog/b", LastMod: &out},
		{Loc: "https://e.com/blog/2026/01/c"},
		{Loc: "https://e.com/blog/2026-01-post"},
		{Loc: "https://e.com/blog/d"},
	}

	got := filterCandidates(month, entries)
	assert.Equal(t, []string{
		"https://e.com/blog/a",
		"https://e.com/blog/2026/01/c",
		"https://e.com/blog/2026-01-post",
	}, got)
}
