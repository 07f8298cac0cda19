package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the payload delivered to every sink: the rendered digest for one
// run plus enough metadata to route it.
type Event struct {
	RunID       string    `json:"run_id"`
	Month       string    `json:"month"`
	GeneratedAt time.Time `json:"generated_at"`
	Sites       int       `json:"sites"`
	Articles    int       `json:"articles"`
	Markdown    string    `json:"markdown"`
}

// NewEvent stamps a digest event with a fresh run id.
func NewEvent(month string, sites, articles int, markdown string) Event {
	return Event{
		RunID:       uuid.NewString(),
		Month:       month,
		GeneratedAt: time.Now().UTC(),
		Sites:       sites,
		Articles:    articles,
		Markdown:    markdown,
	}
}

// Publisher delivers digest events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Build instantiates a publisher for every config entry, in file order. The
// first entry that cannot be built fails the whole batch.
func Build(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		var (
			pub Publisher
			err error
		)
		switch cfg.Type {
		case TypeHTTP:
			pub, err = newHTTPPublisher(ctx, cfg, log)
		case TypeQueue:
			pub, err = newQueuePublisher(ctx, cfg, log)
		default:
			err = fmt.Errorf("no publisher implemented for type %q", cfg.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

// Logger is the logging surface publishers need. It mirrors the logger
// package so any module logger satisfies it.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

// ensureLogger substitutes a no-op logger for nil.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
