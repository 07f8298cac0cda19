package domain

import (
	"net/url"
	"strings"
	"time"
)

// Domain contains core models shared across the digest pipeline.

// Site is a blog whose articles are collected for the report.
type Site struct {
	URL  string
	Name string
}

// NewSite builds a Site with its display name derived from the URL host.
func NewSite(rawURL string) Site {
	return Site{URL: rawURL, Name: NormalizeDomain(rawURL)}
}

// NormalizeDomain returns the host of the URL with any "www." prefix removed.
func NormalizeDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := parsed.Host
	if host == "" {
		host = rawURL
	}
	return strings.TrimPrefix(host, "www.")
}

// Entry is a candidate page discovered in a sitemap. LastMod is nil when the
// sitemap carried no <lastmod> element.
type Entry struct {
	Loc     string
	LastMod *time.Time
}

// Article is a page confirmed as an article of the requested month.
// Immutable once built; only the renderer consumes it.
type Article struct {
	Site        string
	URL         string
	Title       string
	PublishedAt time.Time
	Summary     string
}

// Section groups the articles found for one site.
type Section struct {
	Site     Site
	Articles []Article
}

// Report is the full result of a run, one Section per input site, in input
// order.
type Report struct {
	Month    Month
	Sections []Section
}
