// Package types contains the enumerations and value types shared across the application.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Metric identifies one disease category of the burden table.
type Metric string

// Disease categories, in the order they are offered to users.
const (
	MetricDepressive    Metric = "Depressive"
	MetricSchizophrenia Metric = "Schizophrenia"
	MetricBipolar       Metric = "Bipolar_Disorder"
	MetricEating        Metric = "Eating_Disorders"
	MetricAnxiety       Metric = "Anxiety_Disorders"
)

// MetricCount is the number of disease categories carried by every record.
const MetricCount = 5

// Year range covered by the burden table.
const (
	FirstYear = 1990
	LastYear  = 2019
)

var allMetrics = [MetricCount]Metric{
	MetricDepressive,
	MetricSchizophrenia,
	MetricBipolar,
	MetricEating,
	MetricAnxiety,
}

// long CSV header fragments, keyed by metric.
var metricSubjects = map[Metric]string{
	MetricDepressive:    "depressive disorders",
	MetricSchizophrenia: "schizophrenia",
	MetricBipolar:       "bipolar disorder",
	MetricEating:        "eating disorders",
	MetricAnxiety:       "anxiety disorders",
}

// Metrics returns every metric in display order.
func Metrics() []Metric {
	out := make([]Metric, MetricCount)
	copy(out, allMetrics[:])
	return out
}

// ParseMetric converts a short metric name into a Metric.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.TrimSpace(s))
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidParams, s)
	}
	return m, nil
}

// Valid reports whether m is one of the five known metrics.
func (m Metric) Valid() bool {
	return m.Index() >= 0
}

// Index returns the position of m in display order, or -1.
func (m Metric) Index() int {
	for i, v := range allMetrics {
		if v == m {
			return i
		}
	}
	return -1
}

// Column returns the long CSV header the metric is read from.
func (m Metric) Column() string {
	return "DALYs from " + metricSubjects[m] + " per 100,000 people in, both sexes aged age-standardized"
}

// Label returns a human readable name, e.g. "Bipolar Disorder".
func (m Metric) Label() string {
	return strings.ReplaceAll(string(m), "_", " ")
}

func (m Metric) String() string { return string(m) }

// Years returns the selectable years, most recent first.
func Years() []int {
	out := make([]int, 0, LastYear-FirstYear+1)
	for y := LastYear; y >= FirstYear; y-- {
		out = append(out, y)
	}
	return out
}

// ValidYear reports whether y is a selectable year.
func ValidYear(y int) bool {
	return y >= FirstYear && y <= LastYear
}

// ParseYear parses and validates a year string.
func ParseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: year %q is not a number", ErrInvalidParams, s)
	}
	if !ValidYear(y) {
		return 0, fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidParams, y, FirstYear, LastYear)
	}
	return y, nil
}

// Params are the two user-controlled inputs of the pipeline.
type Params struct {
	Metric Metric `json:"metric"`
	Year   int    `json:"year"`
}

// DefaultParams is the state a new session starts in.
func DefaultParams() Params {
	return Params{Metric: MetricDepressive, Year: LastYear}
}

// Validate checks both fields against their fixed enumerations.
func (p Params) Validate() error {
	if !p.Metric.Valid() {
		return fmt.Errorf("%w: unknown metric %q", ErrInvalidParams, p.Metric)
	}
	if !ValidYear(p.Year) {
		return fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidParams, p.Year, FirstYear, LastYear)
	}
	return nil
}

// Key returns a stable cache key, e.g. "Depressive/2019".
func (p Params) Key() string {
	return string(p.Metric) + "/" + strconv.Itoa(p.Year)
}

// AllParams enumerates every (metric, year) combination.
func AllParams() []Params {
	years := Years()
	out := make([]Params, 0, MetricCount*len(years))
	for _, m := range allMetrics {
		for _, y := range years {
			out = append(out, Params{Metric: m, Year: y})
		}
	}
	return out
}

// DropPolicy controls how rows with missing metric values are filtered at load time.
type DropPolicy string

const (
	// DropBlanket excludes a row when any metric is missing.
	DropBlanket DropPolicy = "blanket"
	// DropPerMetric keeps the row and only nulls the missing metrics.
	DropPerMetric DropPolicy = "per_metric"
)

// ParseDropPolicy validates a policy name. Empty input selects DropBlanket.
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch DropPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DropBlanket:
		return DropBlanket, nil
	case DropPerMetric:
		return DropPerMetric, nil
	default:
		return "", fmt.Errorf("unknown drop policy %q", s)
	}
}

// Options describes the controls offered to users.
type Options struct {
	Metrics []MetricOption `json:"metrics"`
	Years   []int          `json:"years"`
}

// MetricOption is one entry of the metric selector.
type MetricOption struct {
	Name  Metric `json:"name"`
	Label string `json:"label"`
}

// ControlOptions returns the fixed selector contents.
func ControlOptions() Options {
	ms := make([]MetricOption, 0, MetricCount)
	for _, m := range allMetrics {
		ms = append(ms, MetricOption{Name: m, Label: m.Label()})
	}
	return Options{Metrics: ms, Years: Years()}
}
