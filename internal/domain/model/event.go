// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/burden/internal/domain/types"
)

// EventType names one user interaction.
type EventType string

// Interactions a session accepts.
const (
	EventSetMetric EventType = "set_metric"
	EventSetYear   EventType = "set_year"
	EventClick     EventType = "click" // click on a map shape or bar; empty Name is a click on empty space
	EventClear     EventType = "clear"
)

// ErrInvalidEvent is returned for events that cannot be applied.
var ErrInvalidEvent = errors.New("invalid event")

// Event is a single control change or click submitted by a client.
type Event struct {
	Type   EventType    `json:"type"`
	Metric types.Metric `json:"metric,omitempty"`
	Year   int          `json:"year,omitempty"`
	Name   string       `json:"name,omitempty"`
}

// Validate checks that the fields required by the event type are present.
func (e Event) Validate() error {
	switch e.Type {
	case EventSetMetric:
		if !e.Metric.Valid() {
			return fmt.Errorf("%w: %w: unknown metric %q", ErrInvalidEvent, types.ErrInvalidParams, e.Metric)
		}
	case EventSetYear:
		if !types.ValidYear(e.Year) {
			return fmt.Errorf("%w: %w: year %d", ErrInvalidEvent, types.ErrInvalidParams, e.Year)
		}
	case EventClick, EventClear:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// Session is the per-client interaction state: active parameters plus selection.
type Session struct {
	ID        string       `json:"id"`
	Params    types.Params `json:"params"`
	Selected  string       `json:"selected,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewSession returns a session in the default state.
func NewSession(id string, now time.Time) Session {
	return Session{ID: strings.TrimSpace(id), Params: types.DefaultParams(), UpdatedAt: now}
}
