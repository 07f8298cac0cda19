// Command blogdigest collects blog articles published in a given month and
// renders a Markdown report grouped by site.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/growthdesk/blogdigest/internal/config"
	"github.com/growthdesk/blogdigest/internal/digest"
	"github.com/growthdesk/blogdigest/internal/domain"
	"github.com/growthdesk/blogdigest/internal/logger"
	"github.com/growthdesk/blogdigest/internal/report"
	"github.com/growthdesk/blogdigest/pkg/httpclient"
	"github.com/growthdesk/blogdigest/pkg/publishers"
)

// siteList accepts repeated --sites flags, each taking one URL or a
// comma-separated group.
type siteList []string

func (s *siteList) String() string { return strings.Join(*s, ",") }

func (s *siteList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	var (
		monthFlag      string
		outputFlag     string
		configFlag     string
		publishersFlag string
		verbose        bool
		sites          siteList
	)

	flag.StringVar(&monthFlag, "month", time.Now().UTC().Format("2006-01"), "month to report, YYYY-MM")
	flag.Var(&sites, "sites", "site URL to scan (repeatable, comma separated accepted)")
	flag.StringVar(&outputFlag, "output", "", "path for the Markdown report (stdout when empty)")
	flag.StringVar(&configFlag, "config", "", "path to a config file")
	flag.StringVar(&publishersFlag, "publishers", "", "path to a publishers registry file")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.Parse()

	// Month validation happens before any network activity.
	month, err := domain.ParseMonth(monthFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --month %q: expected YYYY-MM\n\n", monthFlag)
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(sites) > 0 {
		cfg.Sites = sites
	}
	if publishersFlag != "" {
		cfg.PublishersFile = publishersFlag
	}

	log, err := logger.New(verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	siteModels := make([]domain.Site, 0, len(cfg.Sites))
	for _, raw := range cfg.Sites {
		siteModels = append(siteModels, domain.NewSite(raw))
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout, cfg.UserAgent)
	service := digest.NewService(client, log, digest.Config{
		Workers:      cfg.Workers,
		RequestDelay: cfg.RequestDelay,
	})

	log.InfoObj("digest run starting", "run_start", map[string]any{
		"month": month.String(),
		"sites": len(siteModels),
	})

	result := service.Run(ctx, month, siteModels)
	markdown := report.Render(month, result.Sections)

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(markdown), 0o644); err != nil {
			log.ErrorObj("report write failed", "output_error", map[string]any{
				"path":  outputFlag,
				"error": err.Error(),
			})
			return 1
		}
	} else if _, err := os.Stdout.WriteString(markdown); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if cfg.PublishersFile != "" {
		if err := publish(ctx, cfg.PublishersFile, month, result, markdown, log); err != nil {
			log.ErrorObj("report publishing failed", "publish_error", map[string]any{
				"error": err.Error(),
			})
			return 1
		}
	}

	return 0
}

// publish delivers the rendered digest to every enabled sink in the registry
// file. Individual sink failures are logged; only registry setup errors are
// fatal.
func publish(ctx context.Context, registryPath string, month domain.Month, result domain.Report, markdown string, log logger.Logger) error {
	reg, err := publishers.LoadRegistry(registryPath)
	if err != nil {
		return err
	}

	pubs, err := publishers.Build(ctx, reg.Enabled(), log)
	if err != nil {
		return err
	}

	articles := 0
	for _, section := range result.Sections {
		articles += len(section.Articles)
	}

	evt := publishers.NewEvent(month.String(), len(result.Sections), articles, markdown)
	for _, pub := range pubs {
		if err := pub.Publish(ctx, evt); err != nil {
			log.WarnObj("publisher delivery failed", "publisher_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"error":        err.Error(),
			})
		}
	}
	return nil
}
