// Package digest orchestrates a report run: sitemap discovery, candidate
// filtering, metadata extraction and month matching, one site at a time.
// Failures stay confined to the site that caused them.
package digest

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/growthdesk/blogdigest/internal/crawler"
	"github.com/growthdesk/blogdigest/internal/domain"
	"github.com/growthdesk/blogdigest/internal/logger"
	"github.com/growthdesk/blogdigest/pkg/feeds"
	"github.com/growthdesk/blogdigest/pkg/httpclient"
	"github.com/growthdesk/blogdigest/pkg/sitemap"
)

// Config tunes a digest run.
type Config struct {
	Workers      int
	RequestDelay time.Duration
	Headers      map[string]string
}

// Service runs the collect pipeline for a list of sites.
type Service struct {
	client  httpclient.Client
	scraper *crawler.Scraper
	log     logger.Logger
	cfg     Config
}

// NewService wires a Service from its dependencies. Nil client and logger
// fall back to defaults.
func NewService(client httpclient.Client, log logger.Logger, cfg Config) *Service {
	if client == nil {
		client = httpclient.Default()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		client: client,
		scraper: crawler.NewScraper(client, log, crawler.Options{
			Workers:      cfg.Workers,
			RequestDelay: cfg.RequestDelay,
			Headers:      cfg.Headers,
		}),
		log: log,
		cfg: cfg,
	}
}

// Run collects the month's articles for every site, in input order. A site
// that fails contributes an empty section; the run itself never fails.
func (s *Service) Run(ctx context.Context, month domain.Month, sites []domain.Site) domain.Report {
	sections := make([]domain.Section, 0, len(sites))

	for _, site := range sites {
		if ctx.Err() != nil {
			sections = append(sections, domain.Section{Site: site})
			continue
		}

		articles, err := s.collectSite(ctx, month, site)
		if err != nil {
			s.log.WarnObj("site collection failed", "site_error", map[string]any{
				"site":  site.Name,
				"url":   site.URL,
				"error": err.Error(),
			})
			articles = nil
		}

		s.log.InfoObj("site collected", "site_done", map[string]any{
			"site":     site.Name,
			"month":    month.String(),
			"articles": len(articles),
		})
		sections = append(sections, domain.Section{Site: site, Articles: articles})
	}

	return domain.Report{Month: month, Sections: sections}
}

// collectSite resolves one site into its matched articles for the month.
func (s *Service) collectSite(ctx context.Context, month domain.Month, site domain.Site) ([]domain.Article, error) {
	prefix, err := pathPrefix(site.URL)
	if err != nil {
		return nil, err
	}

	sitemaps, err := sitemap.Discover(ctx, s.client, site.URL, s.cfg.Headers)
	if errors.Is(err, sitemap.ErrNotFound) {
		return s.collectFromFeed(ctx, month, site, err)
	}
	if err != nil {
		return nil, err
	}

	var entries []domain.Entry
	for _, sitemapURL := range sitemaps {
		collected, cerr := sitemap.Collect(ctx, s.client, sitemapURL, prefix, s.cfg.Headers)
		if cerr != nil {
			s.log.WarnObj("sitemap collection failed", "sitemap_error", map[string]any{
				"site":    site.Name,
				"sitemap": sitemapURL,
				"error":   cerr.Error(),
			})
			continue
		}
		entries = append(entries, collected...)
	}

	candidates := filterCandidates(month, entries)
	articles := s.scraper.Extract(ctx, site, candidates)

	return matchMonth(month, articles), nil
}

// collectFromFeed is the fallback for sites without any discoverable sitemap:
// try the well-known RSS/Atom locations. The original discovery error is
// returned when no feed answers either.
func (s *Service) collectFromFeed(ctx context.Context, month domain.Month, site domain.Site, discoverErr error) ([]domain.Article, error) {
	items, err := feeds.Probe(ctx, s.client, site.URL, s.cfg.Headers)
	if err != nil {
		return nil, discoverErr
	}

	s.log.DebugObj("feed fallback used", "feed_fallback", map[string]any{
		"site":  site.Name,
		"items": len(items),
	})
	return matchMonth(month, items), nil
}

// filterCandidates dedupes sitemap entries and keeps the ones plausibly in
// the month: a lastmod inside the interval, or no lastmod but a month token
// in the URL path.
func filterCandidates(month domain.Month, entries []domain.Entry) []string {
	tokens := month.PathTokens()
	seen := make(map[string]struct{}, len(entries))

	var candidates []string
	for _, entry := range entries {
		if _, dup := seen[entry.Loc]; dup {
			continue
		}
		seen[entry.Loc] = struct{}{}

		switch {
		case entry.LastMod != nil:
			if month.Contains(*entry.LastMod) {
				candidates = append(candidates, entry.Loc)
			}
		case pathHasToken(entry.Loc, tokens):
			candidates = append(candidates, entry.Loc)
		}
	}
	return candidates
}

// pathHasToken reports whether the URL path carries one of the month tokens.
func pathHasToken(loc string, tokens []string) bool {
	parsed, err := url.Parse(loc)
	if err != nil {
		return false
	}
	for _, token := range tokens {
		if strings.Contains(parsed.Path, token) {
			return true
		}
	}
	return false
}

// matchMonth keeps the articles published inside the month, sorted by publish
// date ascending with URL as tie-breaker for deterministic output.
func matchMonth(month domain.Month, articles []domain.Article) []domain.Article {
	matched := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if month.Contains(a.PublishedAt) {
			matched = append(matched, a)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PublishedAt.Equal(matched[j].PublishedAt) {
			return matched[i].PublishedAt.Before(matched[j].PublishedAt)
		}
		return matched[i].URL < matched[j].URL
	})

	if len(matched) == 0 {
		return nil
	}
	return matched
}

// pathPrefix derives the sitemap path filter from the site URL, e.g.
// "https://vwo.com/blog/" restricts entries to paths under "/blog".
func pathPrefix(siteURL string) (string, error) {
	parsed, err := url.Parse(siteURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(parsed.Path, "/"), nil
}
