package trend

import (
	"strings"
	"time"

	"github.com/elonfeng/paperadar/pkg/paper"
)

// TrendingBreakdown is the intrinsic part of a paper's score: its own
// popularity, freshness, and venue prestige.
type TrendingBreakdown struct {
	Stars      int `json:"stars"`
	Recency    int `json:"recency"`
	Conference int `json:"conference"`
	Total      int `json:"total"`
}

// ValidationBreakdown is the corroboration part: signals that can be
// cross-checked outside the catalog entry itself.
type ValidationBreakdown struct {
	Arxiv int `json:"arxiv"`
	Code  int `json:"code"`
	Venue int `json:"venue"`
	Total int `json:"total"`
}

// Breakdown is the full score for one paper. It is recomputed on every
// run and never stored.
type Breakdown struct {
	Trending   TrendingBreakdown   `json:"trending"`
	Validation ValidationBreakdown `json:"validation"`
	Final      int                 `json:"final"`
}

// Scorer computes paper scores from an injected Config. It holds no
// per-run state, so one Scorer can score any number of batches.
type Scorer struct {
	cfg Config
	now func() time.Time
}

// NewScorer creates a scorer. A zero-value Config falls back to defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg.StarWeight == 0 && len(cfg.Recency) == 0 {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg, now: time.Now}
}

// Config returns the scoring configuration in use.
func (s *Scorer) Config() Config { return s.cfg }

// Trending scores a paper on its own attributes.
func (s *Scorer) Trending(rec paper.Record) TrendingBreakdown {
	b := TrendingBreakdown{
		Stars:   rec.Stars * s.cfg.StarWeight,
		Recency: s.recencyBonus(rec.Published),
	}
	if s.venueIsTopTier(rec.Venue) {
		b.Conference = s.cfg.TopVenueBonus
	}
	b.Total = b.Stars + b.Recency + b.Conference
	return b
}

// Validation scores the independently checkable signals.
func (s *Scorer) Validation(rec paper.Record) ValidationBreakdown {
	var b ValidationBreakdown
	if rec.HasArxiv {
		b.Arxiv = s.cfg.ArxivWeight
	}
	if rec.HasCode {
		b.Code = s.cfg.CodeWeight
	}
	if rec.Venue != "" && rec.Venue != "none" {
		b.Venue = s.cfg.ListedVenueWeight
	}
	b.Total = b.Arxiv + b.Code + b.Venue
	return b
}

// Score computes the complete breakdown for one paper.
func (s *Scorer) Score(rec paper.Record) Breakdown {
	trending := s.Trending(rec)
	validation := s.Validation(rec)
	return Breakdown{
		Trending:   trending,
		Validation: validation,
		Final:      trending.Total + validation.Total,
	}
}

// recencyBonus walks the bands in order and returns the first match.
// Papers dated in the future count as published today.
func (s *Scorer) recencyBonus(published time.Time) int {
	age := s.ageDays(published)
	for _, band := range s.cfg.Recency {
		if age <= band.MaxAgeDays {
			return band.Bonus
		}
	}
	return 0
}

// ageDays returns the paper's age in whole days, clamped at zero.
func (s *Scorer) ageDays(published time.Time) int {
	days := int(s.now().Sub(published).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// venueIsTopTier matches by case-insensitive substring: venue strings
// carry year and location suffixes ("NeurIPS 2025 (Oral)"), so exact
// equality would miss them.
func (s *Scorer) venueIsTopTier(venue string) bool {
	lower := strings.ToLower(venue)
	for _, v := range s.cfg.TopVenues {
		if strings.Contains(lower, strings.ToLower(v)) {
			return true
		}
	}
	return false
}
