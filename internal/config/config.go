// Package config loads run settings from an optional viper config file.
// Flags passed on the command line override whatever the file says.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/growthdesk/blogdigest/pkg/httpclient"
)

// DefaultSites is the built-in list of blogs scanned when no --sites override
// is given.
var DefaultSites = []string{
	"https://adoric.com/blog/",
	"https://cxl.com/blog/category/cro-testing/",
	"https://epicgrowth.io/",
	"https://www.abtasty.com/experience-hub/search/?format=Article",
	"https://www.advance-metrics.com/de/category/conversion-optimization-de/",
	"https://vwo.com/blog/",
	"https://sitetuners.com/resources/case-studies/",
	"https://www.crazyegg.com/blog/",
	"https://www.invespcro.com/blog/",
	"https://monetate.com/resources/",
	"https://getuplift.co/blog/",
	"https://crometrics.com/articles/",
	"https://baymard.com/blog",
	"https://outgrow.co/blog/",
	"http://thisisdata.ru/",
	"https://medium.com/",
	"https://www.leadfeeder.com/blog/",
	"https://mindbox.ru/journal/cases",
	"https://econsultancy.com/articles/",
	"https://www.insiderintelligence.com/topics/industry/b2b",
	"https://neilpatel.com/blog/",
	"https://exp-platform.com/talks/",
	"https://ai.stanford.edu/~ronnyk/ronnyk-bib.html",
	"https://blog.hubspot.com/",
	"https://unbounce.com/resources/",
	"https://www.convert.com/blog/optimization/think-like-cro-pro-jon-crowder/",
	"https://growthrocks.com/blog/",
}

// Config holds the effective run settings.
type Config struct {
	Sites          []string
	HTTPTimeout    time.Duration
	RequestDelay   time.Duration
	Workers        int
	UserAgent      string
	PublishersFile string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sites:       DefaultSites,
		HTTPTimeout: httpclient.DefaultTimeout,
		Workers:     1,
		UserAgent:   httpclient.DefaultUserAgent,
	}
}

// Load reads settings from the given config file. An empty path looks for
// blogdigest.yaml in the working directory and silently falls back to
// defaults when none exists.
func Load(path string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetDefault("sites", def.Sites)
	v.SetDefault("http_timeout_seconds", int(def.HTTPTimeout/time.Second))
	v.SetDefault("request_delay_ms", int(def.RequestDelay/time.Millisecond))
	v.SetDefault("workers", def.Workers)
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("publishers_file", def.PublishersFile)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("blogdigest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Sites:          v.GetStringSlice("sites"),
		HTTPTimeout:    time.Duration(v.GetInt("http_timeout_seconds")) * time.Second,
		RequestDelay:   time.Duration(v.GetInt("request_delay_ms")) * time.Millisecond,
		Workers:        v.GetInt("workers"),
		UserAgent:      v.GetString("user_agent"),
		PublishersFile: v.GetString("publishers_file"),
	}

	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = def.HTTPTimeout
	}
	if len(cfg.Sites) == 0 {
		cfg.Sites = def.Sites
	}
	return cfg, nil
}
