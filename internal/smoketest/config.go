// Package smoketest walks a running explorer over every (metric, year) pair and checks
// the linked-view laws against its HTTP API.
package smoketest

import (
	"time"

	"github.com/okian/burden/internal/domain/view"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Workers int           // Concurrent requests
	Timeout time.Duration // HTTP request timeout
	Select  string        // Entity clicked during the session walk
	Output  string        // Report file; empty writes nothing
	Format  string        // Report format, json or yaml
	Verbose bool
}

// Stats holds run statistics.
type Stats struct {
	Requests   int64         `json:"requests" yaml:"requests"`
	Failed     int64         `json:"failed" yaml:"failed"`
	Views      int64         `json:"views" yaml:"views"`
	Empty      int64         `json:"empty_views" yaml:"empty_views"`
	Violations []string      `json:"violations,omitempty" yaml:"violations,omitempty"`
	StartTime  time.Time     `json:"start_time" yaml:"start_time"`
	EndTime    time.Time     `json:"end_time" yaml:"end_time"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Options mirrors GET /api/options.
type Options struct {
	Metrics []struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	} `json:"metrics"`
	Years []int `json:"years"`
}

// SessionResponse mirrors the session endpoints.
type SessionResponse struct {
	ID      string `json:"id"`
	Session struct {
		Selected string `json:"selected"`
		Params   struct {
			Metric string `json:"metric"`
			Year   int    `json:"year"`
		} `json:"params"`
	} `json:"session"`
	Bundle view.Bundle `json:"bundle"`
}
