package trend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/elonfeng/paperadar/pkg/paper"
)

// ErrNoCandidates means the batch had no scoreable papers left even after
// the year-filter fallback. Selection fails rather than inventing a pick.
var ErrNoCandidates = errors.New("no candidate papers")

// Candidate pairs a paper with its full score breakdown.
type Candidate struct {
	Record    paper.Record `json:"record"`
	Breakdown Breakdown    `json:"breakdown"`
}

// Ranking is the ordered result of scoring a batch. Fallback is set when
// the year filter removed everything and the full batch was ranked
// instead; callers surface it because "best available" is a weaker claim
// than "recent trending".
type Ranking struct {
	Candidates []Candidate `json:"candidates"`
	Fallback   bool        `json:"fallback"`
}

// Best returns the selected paper. Rank guarantees at least one candidate.
func (r *Ranking) Best() Candidate {
	return r.Candidates[0]
}

// FilterByYear keeps papers published in cutoffYear or later.
func FilterByYear(records []paper.Record, cutoffYear int) []paper.Record {
	var kept []paper.Record
	for _, rec := range records {
		if rec.Published.Year() >= cutoffYear {
			kept = append(kept, rec)
		}
	}
	return kept
}

// Rank filters, scores, and orders a batch of normalized papers.
//
// Ordering is by final score descending. Ties resolve by higher trending
// total, then higher star count, then original batch position; re-running
// on the same input always yields the same order.
func (s *Scorer) Rank(records []paper.Record) (*Ranking, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("rank papers: %w", ErrNoCandidates)
	}

	kept := FilterByYear(records, s.cfg.CutoffYear)
	fallback := false
	if len(kept) == 0 {
		kept = records
		fallback = true
	}

	candidates := make([]Candidate, 0, len(kept))
	for _, rec := range kept {
		candidates = append(candidates, Candidate{Record: rec, Breakdown: s.Score(rec)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Breakdown.Final != b.Breakdown.Final {
			return a.Breakdown.Final > b.Breakdown.Final
		}
		if a.Breakdown.Trending.Total != b.Breakdown.Trending.Total {
			return a.Breakdown.Trending.Total > b.Breakdown.Trending.Total
		}
		if a.Record.Stars != b.Record.Stars {
			return a.Record.Stars > b.Record.Stars
		}
		return false
	})

	return &Ranking{Candidates: candidates, Fallback: fallback}, nil
}
