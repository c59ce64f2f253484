package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/elonfeng/paperadar/pkg/trend"
)

// Notification is the payload delivered to alert destinations when a
// daily pick is selected.
type Notification struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Body      string `json:"body"`
	Score     int    `json:"score"`
	Stars     int    `json:"stars"`
	Venue     string `json:"venue"`
	Published string `json:"published"`
	Fallback  bool   `json:"fallback"`
}

// NewNotification builds the payload for a ranked pick. Body carries the
// composed post text, or a short plain line when no composer is configured.
func NewNotification(cand trend.Candidate, body string, fallback bool) *Notification {
	rec := cand.Record
	return &Notification{
		Title:     rec.Title,
		URL:       rec.URL,
		Body:      body,
		Score:     cand.Breakdown.Final,
		Stars:     rec.Stars,
		Venue:     rec.Venue,
		Published: rec.Published.Format("2006-01-02"),
		Fallback:  fallback,
	}
}

// Notifier delivers notifications to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers. A failing
// destination does not stop delivery to the others.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
