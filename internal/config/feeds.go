package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FeedConfig is the config identity of one realtime source: which
// feed it scopes its entities to, how to reach it, and its retry
// behavior.
type FeedConfig struct {
	Name              string `yaml:"name" validate:"required"`
	FeedID            string `yaml:"feedID" validate:"required"`
	Type              string `yaml:"type" validate:"required,oneof=poll stream"`
	Kind              string `yaml:"kind" validate:"required,oneof=trip-updates stop-patches"`
	URL               string `yaml:"url" validate:"required,url"`
	PollIntervalMS    int    `yaml:"pollIntervalMS" validate:"gte=0"`
	ReconnectPeriodMS int    `yaml:"reconnectPeriodMS" validate:"gte=0"`
	InitialTimeoutMS  int    `yaml:"initialTimeoutMS" validate:"gte=0"`
}

// PollInterval returns the poll interval as a duration.
func (f FeedConfig) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalMS) * time.Millisecond
}

// ReconnectPeriod returns the reconnect backoff as a duration.
func (f FeedConfig) ReconnectPeriod() time.Duration {
	return time.Duration(f.ReconnectPeriodMS) * time.Millisecond
}

// InitialTimeout returns the priming deadline as a duration.
func (f FeedConfig) InitialTimeout() time.Duration {
	return time.Duration(f.InitialTimeoutMS) * time.Millisecond
}

type feedsFile struct {
	Feeds []FeedConfig `yaml:"feeds"`
}

// LoadFeeds reads and validates the realtime feed list from a YAML
// file. Unset intervals get defaults of 60s polling, 30s reconnect
// and 30s initial timeout.
func LoadFeeds(path string) ([]FeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFeeds(data)
}

func parseFeeds(data []byte) ([]FeedConfig, error) {
	var file feedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	v := validator.New()
	for i := range file.Feeds {
		f := &file.Feeds[i]
		if err := v.Struct(f); err != nil {
			return nil, fmt.Errorf("feed %q: %w", f.Name, err)
		}
		if f.PollIntervalMS == 0 {
			f.PollIntervalMS = 60_000
		}
		if f.ReconnectPeriodMS == 0 {
			f.ReconnectPeriodMS = 30_000
		}
		if f.InitialTimeoutMS == 0 {
			f.InitialTimeoutMS = 30_000
		}
	}
	return file.Feeds, nil
}
