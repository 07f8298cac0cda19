// Package sitemap discovers and walks XML sitemaps to enumerate the pages of
// a site. It understands plain <urlset> documents and nested <sitemapindex>
// files, following the latter recursively.
package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/growthdesk/blogdigest/internal/domain"
	"github.com/growthdesk/blogdigest/pkg/httpclient"
)

// ErrNotFound reports that no sitemap could be discovered for a site: the
// robots.txt listed none and the /sitemap.xml fallback did not answer.
var ErrNotFound = errors.New("sitemap: not found")

const robotsSitemapPrefix = "sitemap:"

type urlSet struct {
	URLs []urlSetEntry `xml:"url"`
}

type urlSetEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

// Discover resolves the sitemap URLs of a site. It reads the Sitemap: lines
// of robots.txt first; when robots.txt lists none, it probes /sitemap.xml and
// returns ErrNotFound if that probe fails.
func Discover(ctx context.Context, client httpclient.Client, siteURL string, headers map[string]string) ([]string, error) {
	parsed, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("parse site url %q: %w", siteURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("site url %q has no scheme or host", siteURL)
	}

	origin := parsed.Scheme + "://" + parsed.Host

	if found := sitemapsFromRobots(ctx, client, origin+"/robots.txt", headers); len(found) > 0 {
		return found, nil
	}

	fallback := origin + "/sitemap.xml"
	resp, err := client.Get(ctx, fallback, headers)
	if err != nil {
		return nil, fmt.Errorf("%w: probe %s: %v", ErrNotFound, fallback, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrNotFound, fallback, resp.StatusCode())
	}

	return []string{fallback}, nil
}

// sitemapsFromRobots extracts Sitemap: directives from robots.txt. A missing
// or unreadable robots.txt simply yields nothing.
func sitemapsFromRobots(ctx context.Context, client httpclient.Client, robotsURL string, headers map[string]string) []string {
	resp, err := client.Get(ctx, robotsURL, headers)
	if err != nil || resp.StatusCode() != http.StatusOK {
		return nil
	}

	var sitemaps []string
	for _, line := range strings.Split(string(resp.Body()), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(line), robotsSitemapPrefix) {
			continue
		}
		if loc := strings.TrimSpace(line[len(robotsSitemapPrefix):]); loc != "" {
			sitemaps = append(sitemaps, loc)
		}
	}
	return sitemaps
}

// Collect fetches a sitemap and returns its page entries. Sitemap indexes are
// followed recursively, with a visited set guarding against cycles. When
// pathPrefix is non-empty, only entries whose URL path starts with it are
// kept.
func Collect(ctx context.Context, client httpclient.Client, sitemapURL, pathPrefix string, headers map[string]string) ([]domain.Entry, error) {
	return collect(ctx, client, sitemapURL, pathPrefix, headers, make(map[string]struct{}))
}

func collect(ctx context.Context, client httpclient.Client, sitemapURL, pathPrefix string, headers map[string]string, visited map[string]struct{}) ([]domain.Entry, error) {
	if _, seen := visited[sitemapURL]; seen {
		return nil, nil
	}
	visited[sitemapURL] = struct{}{}

	raw, err := fetchSitemap(ctx, client, sitemapURL, headers)
	if err != nil {
		return nil, err
	}

	entries, err := parseURLSet(raw, pathPrefix)
	if err != nil {
		return nil, fmt.Errorf("decode sitemap %s: %w", sitemapURL, err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	children, err := parseSitemapIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("decode sitemap index %s: %w", sitemapURL, err)
	}

	var all []domain.Entry
	for _, child := range children {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}

		nested, err := collect(ctx, client, child, pathPrefix, headers, visited)
		if err != nil {
			// A broken nested sitemap should not discard what the
			// siblings already produced.
			continue
		}
		all = append(all, nested...)
	}
	return all, nil
}

// parseURLSet decodes a <urlset> document into entries, applying the path
// prefix filter.
func parseURLSet(data []byte, pathPrefix string) ([]domain.Entry, error) {
	var set urlSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(set.URLs))
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		if pathPrefix != "" {
			parsed, err := url.Parse(loc)
			if err != nil || !strings.HasPrefix(parsed.Path, pathPrefix) {
				continue
			}
		}

		var lastMod *time.Time
		if t, ok := domain.ParseDate(u.LastMod); ok {
			lastMod = &t
		}
		entries = append(entries, domain.Entry{Loc: loc, LastMod: lastMod})
	}
	return entries, nil
}

// parseSitemapIndex decodes a <sitemapindex> document into nested sitemap
// URLs.
func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// fetchSitemap retrieves the sitemap body, demanding a 200.
func fetchSitemap(ctx context.Context, client httpclient.Client, sitemapURL string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, sitemapURL, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap %s: %w", sitemapURL, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("sitemap %s returned status %d body: %s", sitemapURL, resp.StatusCode(), responseSnippet(body))
	}
	return body, nil
}

// responseSnippet returns a truncated snippet of the response body for error
// messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
