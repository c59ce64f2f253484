package trend

import (
	"testing"
	"time"

	"github.com/elonfeng/paperadar/pkg/paper"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// newTestScorer pins the clock so age buckets are exact.
func newTestScorer(cfg Config) *Scorer {
	s := NewScorer(cfg)
	s.now = func() time.Time { return testNow }
	return s
}

func daysAgo(days int) time.Time {
	return testNow.AddDate(0, 0, -days)
}

func TestRecencyBuckets(t *testing.T) {
	s := newTestScorer(DefaultConfig())

	tests := []struct {
		name      string
		published time.Time
		want      int
	}{
		{"published today", daysAgo(0), 50},
		{"three days old", daysAgo(3), 50},
		{"boundary at seven days", daysAgo(7), 50},
		{"eight days old", daysAgo(8), 25},
		{"boundary at thirty days", daysAgo(30), 25},
		{"thirty-one days old", daysAgo(31), 10},
		{"boundary at ninety days", daysAgo(90), 10},
		{"ninety-one days old", daysAgo(91), 0},
		{"a year old", daysAgo(365), 0},
		{"future date counts as today", daysAgo(-10), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.recencyBonus(tt.published)
			if got != tt.want {
				t.Errorf("recencyBonus(%s) = %d, want %d", tt.published.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestVenueMatching(t *testing.T) {
	s := newTestScorer(DefaultConfig())

	tests := []struct {
		venue string
		want  bool
	}{
		{"ICLR 2025", true},
		{"iclr 2025 (poster)", true},
		{"NeurIPS 2024 Workshop", true},
		{"neurips", true},
		{"EMNLP 2023, Singapore", true},
		{"CVPR 2025", false},
		{"none", false},
		{"", false},
		{"Journal of Machine Learning Research", false},
	}

	for _, tt := range tests {
		t.Run(tt.venue, func(t *testing.T) {
			if got := s.venueIsTopTier(tt.venue); got != tt.want {
				t.Errorf("venueIsTopTier(%q) = %v, want %v", tt.venue, got, tt.want)
			}
		})
	}
}

func TestScoreBreakdowns(t *testing.T) {
	s := newTestScorer(DefaultConfig())

	tests := []struct {
		name           string
		rec            paper.Record
		wantTrending   int
		wantValidation int
		wantFinal      int
	}{
		{
			name: "fresh starred conference paper",
			rec: paper.Record{
				Title:     "Flashy Diffusion",
				Stars:     12,
				Published: daysAgo(5),
				Venue:     "ICLR 2025",
				HasArxiv:  true,
				HasCode:   true,
			},
			wantTrending:   190, // 120 stars + 50 recency + 20 conference
			wantValidation: 30,  // 10 arxiv + 15 code + 5 venue
			wantFinal:      220,
		},
		{
			name: "older paper without a venue",
			rec: paper.Record{
				Title:     "Quiet Progress",
				Stars:     3,
				Published: daysAgo(45),
				Venue:     "none",
				HasArxiv:  true,
				HasCode:   true,
			},
			wantTrending:   40, // 30 stars + 10 recency
			wantValidation: 25, // 10 arxiv + 15 code
			wantFinal:      65,
		},
		{
			name: "starless arxiv preprint",
			rec: paper.Record{
				Title:     "Preprint Only",
				Stars:     0,
				Published: daysAgo(25),
				Venue:     "none",
				HasArxiv:  true,
				HasCode:   false,
			},
			wantTrending:   25, // 25 recency
			wantValidation: 10, // 10 arxiv
			wantFinal:      35,
		},
		{
			name: "non-top-tier venue still validates",
			rec: paper.Record{
				Title:     "Workshop Find",
				Stars:     1,
				Published: daysAgo(10),
				Venue:     "CoLLAs 2025",
				HasArxiv:  false,
				HasCode:   false,
			},
			wantTrending:   35, // 10 stars + 25 recency, no conference bonus
			wantValidation: 5,  // venue listed but not top-tier
			wantFinal:      40,
		},
		{
			name:           "empty record scores zero",
			rec:            paper.Record{Title: "Nothing", Published: daysAgo(200), Venue: "none"},
			wantTrending:   0,
			wantValidation: 0,
			wantFinal:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s.Score(tt.rec)
			if b.Trending.Total != tt.wantTrending {
				t.Errorf("Trending.Total = %d, want %d (breakdown %+v)", b.Trending.Total, tt.wantTrending, b.Trending)
			}
			if b.Validation.Total != tt.wantValidation {
				t.Errorf("Validation.Total = %d, want %d (breakdown %+v)", b.Validation.Total, tt.wantValidation, b.Validation)
			}
			if b.Final != tt.wantFinal {
				t.Errorf("Final = %d, want %d", b.Final, tt.wantFinal)
			}
			if b.Final != b.Trending.Total+b.Validation.Total {
				t.Errorf("Final %d != Trending %d + Validation %d", b.Final, b.Trending.Total, b.Validation.Total)
			}
		})
	}
}

func TestScoreComponentSums(t *testing.T) {
	s := newTestScorer(DefaultConfig())
	rec := paper.Record{
		Title:     "Sum Check",
		Stars:     7,
		Published: daysAgo(2),
		Venue:     "ICML 2025",
		HasArxiv:  true,
		HasCode:   true,
	}

	trending := s.Trending(rec)
	if trending.Total != trending.Stars+trending.Recency+trending.Conference {
		t.Errorf("trending total %d does not equal component sum", trending.Total)
	}

	validation := s.Validation(rec)
	if validation.Total != validation.Arxiv+validation.Code+validation.Venue {
		t.Errorf("validation total %d does not equal component sum", validation.Total)
	}
}

func TestCustomWeights(t *testing.T) {
	cfg := Config{
		CutoffYear: 2020,
		StarWeight: 2,
		Recency: []RecencyBand{
			{MaxAgeDays: 14, Bonus: 100},
		},
		TopVenueBonus:     7,
		TopVenues:         []string{"KDD"},
		ArxivWeight:       1,
		CodeWeight:        2,
		ListedVenueWeight: 3,
	}
	s := newTestScorer(cfg)

	rec := paper.Record{
		Title:     "Tuned",
		Stars:     5,
		Published: daysAgo(3),
		Venue:     "KDD 2025",
		HasArxiv:  true,
		HasCode:   true,
	}

	b := s.Score(rec)
	if b.Trending.Stars != 10 {
		t.Errorf("Stars component = %d, want 10", b.Trending.Stars)
	}
	if b.Trending.Recency != 100 {
		t.Errorf("Recency component = %d, want 100", b.Trending.Recency)
	}
	if b.Trending.Conference != 7 {
		t.Errorf("Conference component = %d, want 7", b.Trending.Conference)
	}
	if b.Validation.Total != 6 {
		t.Errorf("Validation total = %d, want 6", b.Validation.Total)
	}
	if b.Final != 123 {
		t.Errorf("Final = %d, want 123", b.Final)
	}
}

func TestNewScorerZeroConfig(t *testing.T) {
	cfg := NewScorer(Config{}).Config()
	if cfg.StarWeight != 10 {
		t.Errorf("zero config StarWeight = %d, want default 10", cfg.StarWeight)
	}
	if len(cfg.Recency) != 3 {
		t.Errorf("zero config recency bands = %d, want 3", len(cfg.Recency))
	}
	if len(cfg.TopVenues) == 0 {
		t.Error("zero config should carry the default venue set")
	}
}
