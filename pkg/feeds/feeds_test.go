package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdesk/blogdigest/pkg/httpclient"
)

func testClient() httpclient.Client {
	return httpclient.NewRestyClient(5*time.Second, "")
}

const rssBody = `<?xml version="1.0"?>
<rss version="2.0"><channel>
  <title>Example Blog</title>
  <item>
    <title>Hello world</title>
    <link>https://example.com/posts/hello</link>
    <pubDate>Thu, 15 Jan 2026 10:00:00 +0000</pubDate>
    <description>&lt;p&gt;HTML in description. Second sentence. Third.&lt;/p&gt;</description>
  </item>
  <item>
    <title>No link item</title>
    <pubDate>Fri, 16 Jan 2026 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>No date item</title>
    <link>https://example.com/posts/undated</link>
  </item>
</channel></rss>`

func TestProbe_ParsesFirstAnsweringFeed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/blog/rss.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	articles, err := Probe(context.Background(), testClient(), srv.URL+"/blog/", nil)
	require.NoError(t, err)
	require.Len(t, articles, 1, "items without link or date are skipped")

	a := articles[0]
	assert.Equal(t, "Hello world", a.Title)
	assert.Equal(t, "https://example.com/posts/hello", a.URL)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), a.PublishedAt)
	assert.Equal(t, "HTML in description. Second sentence.", a.Summary, "markup stripped, two sentences kept")
	assert.Equal(t, "127.0.0.1", a.Site[:9])
}

func TestProbe_RootFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// The site path has no feed; the probe must fall back to the root.
	articles, err := Probe(context.Background(), testClient(), srv.URL+"/blog/category/x/", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, articles)
}

func TestProbe_NoFeed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Probe(context.Background(), testClient(), srv.URL+"/blog/", nil)
	assert.ErrorIs(t, err, ErrNoFeed)
}

func TestProbe_GarbageBodyIsSkipped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not xml")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := Probe(context.Background(), testClient(), srv.URL+"/", nil)
	assert.ErrorIs(t, err, ErrNoFeed)
}
