package paper

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadDate marks a record whose published date is missing or unparsable.
// Callers exclude the record and keep processing the batch.
var ErrBadDate = errors.New("unparsable published date")

// Raw is a paper as a catalog source returns it, before any validation.
// Published stays in the source's own string form; Normalize is the only
// place that interprets it.
type Raw struct {
	ID        string
	Source    string
	Title     string
	Abstract  string
	Published string
	URL       string
	RepoURL   string
	Stars     int
	Venue     string
}

// Record is a validated paper ready for scoring.
type Record struct {
	ID        string    `json:"id" db:"id"`
	Source    string    `json:"source" db:"source"`
	Title     string    `json:"title" db:"title"`
	Abstract  string    `json:"abstract" db:"abstract"`
	URL       string    `json:"url" db:"url"`
	RepoURL   string    `json:"repo_url" db:"repo_url"`
	Stars     int       `json:"stars" db:"stars"`
	Venue     string    `json:"venue" db:"venue"`
	Published time.Time `json:"published" db:"published"`
	HasArxiv  bool      `json:"has_arxiv" db:"has_arxiv"`
	HasCode   bool      `json:"has_code" db:"has_code"`
}

// Date layouts seen in catalog responses: full timestamps and bare dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// Normalize validates one raw record. Missing stars default to 0, a blank
// venue becomes "none", and an unusable published date fails with ErrBadDate.
// HasCode is only set when a repository link comes with at least one star;
// a zero-star repo link is not treated as available code.
func Normalize(raw Raw) (Record, error) {
	published, err := parseDate(raw.Published)
	if err != nil {
		return Record{}, fmt.Errorf("record %q: %w", raw.ID, err)
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = "Untitled"
	}

	stars := raw.Stars
	if stars < 0 {
		stars = 0
	}

	venue := strings.TrimSpace(raw.Venue)
	if venue == "" {
		venue = "none"
	}

	return Record{
		ID:        raw.ID,
		Source:    raw.Source,
		Title:     title,
		Abstract:  strings.TrimSpace(raw.Abstract),
		URL:       raw.URL,
		RepoURL:   raw.RepoURL,
		Stars:     stars,
		Venue:     venue,
		Published: published,
		HasArxiv:  strings.Contains(raw.URL, "arxiv.org"),
		HasCode:   raw.RepoURL != "" && stars > 0,
	}, nil
}

// NormalizeAll normalizes a batch, dropping records with bad dates.
// The returned errors describe each dropped record; the batch itself
// never fails.
func NormalizeAll(raws []Raw) ([]Record, []error) {
	var (
		records []Record
		skipped []error
	)
	for _, raw := range raws {
		rec, err := Normalize(raw)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date: %w", ErrBadDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: %w", s, ErrBadDate)
}
