package publishers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// httpPublisher POSTs the digest event as JSON to a configured endpoint.
type httpPublisher struct {
	id     string
	typ    string
	method string
	url    string
	rc     *resty.Client
	log    Logger
}

// newHTTPPublisher builds an HTTP sink from its config entry.
func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	rc := resty.New().
		SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second).
		SetHeaders(cfg.HTTP.Headers)

	return &httpPublisher{
		id:     cfg.ID,
		typ:    cfg.Type,
		method: cfg.HTTP.Method,
		url:    cfg.HTTP.URL,
		rc:     rc,
		log:    ensureLogger(log),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return p.typ }

// Publish sends the event to the configured endpoint and demands a 2xx.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := p.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(evt).
		Execute(p.method, p.url)
	if err != nil {
		p.log.ErrorObj("http publisher send failed", "publisher_http_error", map[string]any{
			"publisher_id": p.id,
			"url":          p.url,
			"error":        err.Error(),
		})
		return fmt.Errorf("send digest to %s: %w", p.url, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("http publisher %s returned status %d", p.url, resp.StatusCode())
	}

	p.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": p.id,
		"status":       resp.StatusCode(),
	})
	return nil
}
