package trend

import (
	"fmt"
	"time"
)

// DefaultTopVenues is the base set of venues granting the top-tier bonus.
var DefaultTopVenues = []string{
	"ICLR", "ICML", "NeurIPS", "AAAI", "IJCAI", "ACL", "EMNLP",
}

// RecencyBand awards Bonus to papers at most MaxAgeDays old. Bands are
// evaluated in order; the first match wins.
type RecencyBand struct {
	MaxAgeDays int `yaml:"max_age_days" json:"max_age_days"`
	Bonus      int `yaml:"bonus" json:"bonus"`
}

// Config holds every scoring weight and threshold. Nothing in the scorer
// is hard-coded: tuning happens here, not in scorer logic.
type Config struct {
	CutoffYear        int           `yaml:"cutoff_year" json:"cutoff_year"`
	StarWeight        int           `yaml:"star_weight" json:"star_weight"`
	Recency           []RecencyBand `yaml:"recency" json:"recency"`
	TopVenueBonus     int           `yaml:"top_venue_bonus" json:"top_venue_bonus"`
	TopVenues         []string      `yaml:"top_venues" json:"top_venues"`
	ArxivWeight       int           `yaml:"arxiv_weight" json:"arxiv_weight"`
	CodeWeight        int           `yaml:"code_weight" json:"code_weight"`
	ListedVenueWeight int           `yaml:"listed_venue_weight" json:"listed_venue_weight"`
}

// DefaultConfig returns the stock scoring configuration.
func DefaultConfig() Config {
	return Config{
		CutoffYear: time.Now().UTC().Year(),
		StarWeight: 10,
		Recency: []RecencyBand{
			{MaxAgeDays: 7, Bonus: 50},
			{MaxAgeDays: 30, Bonus: 25},
			{MaxAgeDays: 90, Bonus: 10},
		},
		TopVenueBonus:     20,
		TopVenues:         DefaultTopVenues,
		ArxivWeight:       10,
		CodeWeight:        15,
		ListedVenueWeight: 5,
	}
}

// Validate rejects configurations that would make scoring meaningless.
// Called at config load time so bad weights never reach a run.
func (c Config) Validate() error {
	if c.CutoffYear <= 0 {
		return fmt.Errorf("cutoff_year must be positive, got %d", c.CutoffYear)
	}
	if c.StarWeight < 0 {
		return fmt.Errorf("star_weight must not be negative, got %d", c.StarWeight)
	}
	if len(c.Recency) == 0 {
		return fmt.Errorf("at least one recency band is required")
	}
	prev := 0
	for i, band := range c.Recency {
		if band.MaxAgeDays <= prev {
			return fmt.Errorf("recency band %d: max_age_days %d must be greater than the previous band's %d",
				i, band.MaxAgeDays, prev)
		}
		if band.Bonus < 0 {
			return fmt.Errorf("recency band %d: bonus must not be negative, got %d", i, band.Bonus)
		}
		prev = band.MaxAgeDays
	}
	if c.TopVenueBonus < 0 {
		return fmt.Errorf("top_venue_bonus must not be negative, got %d", c.TopVenueBonus)
	}
	if c.TopVenueBonus > 0 && len(c.TopVenues) == 0 {
		return fmt.Errorf("top_venues must not be empty when top_venue_bonus is set")
	}
	if c.ArxivWeight < 0 {
		return fmt.Errorf("arxiv_weight must not be negative, got %d", c.ArxivWeight)
	}
	if c.CodeWeight < 0 {
		return fmt.Errorf("code_weight must not be negative, got %d", c.CodeWeight)
	}
	if c.ListedVenueWeight < 0 {
		return fmt.Errorf("listed_venue_weight must not be negative, got %d", c.ListedVenueWeight)
	}
	return nil
}
