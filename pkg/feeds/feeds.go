// Package feeds is the fallback discovery path for sites without sitemaps:
// it probes the common RSS/Atom feed locations and converts feed items into
// articles directly, skipping the per-page crawl.
package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/growthdesk/blogdigest/internal/domain"
	"github.com/growthdesk/blogdigest/pkg/httpclient"
)

// ErrNoFeed reports that none of the probed feed locations answered with a
// parseable feed.
var ErrNoFeed = errors.New("feeds: no feed found")

// feedPaths are probed relative to the site path first, then the site root.
var feedPaths = []string{"/feed", "/feed/", "/rss.xml", "/atom.xml", "/index.xml"}

// Probe tries the well-known feed locations of a site and returns the items
// of the first feed that parses, converted to articles.
func Probe(ctx context.Context, client httpclient.Client, siteURL string, headers map[string]string) ([]domain.Article, error) {
	candidates, err := candidateURLs(siteURL)
	if err != nil {
		return nil, err
	}

	parser := gofeed.NewParser()
	siteName := domain.NormalizeDomain(siteURL)

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, err := client.Get(ctx, candidate, headers)
		if err != nil || resp.StatusCode() != http.StatusOK {
			continue
		}

		feed, err := parser.ParseString(string(resp.Body()))
		if err != nil || len(feed.Items) == 0 {
			continue
		}

		return feedArticles(siteName, feed), nil
	}

	return nil, ErrNoFeed
}

// candidateURLs lists the feed locations to probe, deduplicated and in
// priority order.
func candidateURLs(siteURL string) ([]string, error) {
	parsed, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}

	origin := parsed.Scheme + "://" + parsed.Host
	base := origin + strings.TrimSuffix(parsed.Path, "/")

	seen := make(map[string]struct{})
	var candidates []string
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		candidates = append(candidates, u)
	}

	for _, p := range feedPaths {
		add(base + p)
	}
	for _, p := range feedPaths {
		add(origin + p)
	}
	return candidates, nil
}

// feedArticles converts feed items into articles. Items without a link or a
// parseable date are skipped; the month filter happens downstream.
func feedArticles(siteName string, feed *gofeed.Feed) []domain.Article {
	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil {
			continue
		}

		articles = append(articles, domain.Article{
			Site:        siteName,
			URL:         link,
			Title:       strings.TrimSpace(item.Title),
			PublishedAt: published.UTC(),
			Summary:     domain.ShortenSummary(plainText(item.Description)),
		})
	}
	return articles
}

// plainText strips markup from a feed description. Feeds routinely embed
// HTML there.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
