package crawler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/growthdesk/blogdigest/internal/domain"
	"github.com/growthdesk/blogdigest/internal/logger"
	"github.com/growthdesk/blogdigest/pkg/httpclient"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Options tune how candidate pages are fetched. The zero value means one
// worker and no delay between requests.
type Options struct {
	Workers      int
	RequestDelay time.Duration
	Headers      map[string]string
}

// Scraper fetches candidate pages and extracts article metadata from their
// HTML.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
	opts   Options
}

// NewScraper creates a Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger, opts Options) *Scraper {
	if client == nil {
		client = httpclient.Default()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scraper{client: client, log: log, opts: opts}
}

// Extract fetches every candidate URL and returns the pages that yielded both
// a title and a publish date. Pages that fail to fetch or parse are skipped.
func (s *Scraper) Extract(ctx context.Context, site domain.Site, urls []string) []domain.Article {
	if len(urls) == 0 {
		return nil
	}

	workerCount := min(len(urls), s.opts.Workers)

	var limiter <-chan time.Time
	if s.opts.RequestDelay > 0 {
		ticker := time.NewTicker(s.opts.RequestDelay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	out := make([]*domain.Article, len(urls))
	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := 0; workerID < workerCount; workerID++ {
		wg.Add(1)
		go s.pageWorker(ctx, site, urls, limiter, jobCh, out, &wg, workerID)
	}

	// The send must stay cancellable: workers exit on ctx.Done, so a bare
	// send could block forever once they are gone.
feed:
	for idx := range urls {
		select {
		case jobCh <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobCh)

	wg.Wait()

	articles := make([]domain.Article, 0, len(urls))
	for _, a := range out {
		if a != nil {
			articles = append(articles, *a)
		}
	}
	return articles
}

// pageWorker processes candidate URLs from the job channel, respecting the
// rate limiter.
func (s *Scraper) pageWorker(
	ctx context.Context,
	site domain.Site,
	urls []string,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []*domain.Article,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		article, err := s.fetchAndParse(ctx, site, urls[idx], workerID)
		if err != nil {
			s.log.WarnObj("article page scrape failed", "scrape_error", map[string]any{
				"worker_id": workerID,
				"site":      site.Name,
				"url":       urls[idx],
				"error":     err.Error(),
			})
			continue
		}
		if article != nil {
			out[idx] = article
		}
	}
}

// fetchAndParse fetches a page and extracts metadata. It returns nil without
// error when the page lacks a title or publish date and therefore is not an
// article.
func (s *Scraper) fetchAndParse(ctx context.Context, site domain.Site, pageURL string, workerID int) (*domain.Article, error) {
	s.log.DebugObj("scraping article page", "scrape_start", map[string]any{
		"worker_id": workerID,
		"site":      site.Name,
		"url":       pageURL,
	})

	resp, err := s.client.Get(ctx, pageURL, s.opts.Headers)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return nil, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.InfoObj("html body truncated", "truncation", map[string]any{
			"worker_id": workerID,
			"site":      site.Name,
			"url":       pageURL,
			"original":  len(body),
			"kept":      maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parsePage(body)
	if err != nil {
		return nil, err
	}
	if meta.Title == "" || meta.PublishedAt.IsZero() {
		return nil, nil
	}

	return &domain.Article{
		Site:        site.Name,
		URL:         pageURL,
		Title:       meta.Title,
		PublishedAt: meta.PublishedAt,
		Summary:     meta.Summary,
	}, nil
}

// pageMeta holds what the heuristics could recover from a page.
type pageMeta struct {
	Title       string
	PublishedAt time.Time
	Summary     string
}

// parsePage applies the extraction heuristics in order: structured metadata
// tags first, visible markup second.
func parsePage(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	pm := pageMeta{
		Title:       extractTitle(doc),
		PublishedAt: extractPublishedAt(doc),
		Summary:     domain.ShortenSummary(extractDescription(doc)),
	}
	return pm, nil
}

func extractTitle(doc *goquery.Document) string {
	return firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		doc.Find("h1").First().Text(),
		doc.Find("title").First().Text(),
	)
}

func extractPublishedAt(doc *goquery.Document) time.Time {
	if raw := metaContent(doc, `meta[property="article:published_time"]`); raw != "" {
		if t, ok := domain.ParseDate(raw); ok {
			return t
		}
	}

	timeTag := doc.Find("time").First()
	if timeTag.Length() == 0 {
		return time.Time{}
	}
	raw, exists := timeTag.Attr("datetime")
	if !exists || strings.TrimSpace(raw) == "" {
		raw = timeTag.Text()
	}
	if t, ok := domain.ParseDate(strings.TrimSpace(raw)); ok {
		return t
	}
	return time.Time{}
}

func extractDescription(doc *goquery.Document) string {
	return firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="description"]`),
		doc.Find("p").First().Text(),
	)
}

// metaContent returns the trimmed content attribute of the first node
// matching the selector.
func metaContent(doc *goquery.Document, sel string) string {
	if node := doc.Find(sel).First(); node.Length() > 0 {
		if val, ok := node.Attr("content"); ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// firstNonEmpty returns the first value that is non-empty after collapsing
// whitespace.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if cleaned := domain.CollapseWhitespace(v); cleaned != "" {
			return cleaned
		}
	}
	return ""
}
