package trend

import (
	"errors"
	"testing"
	"time"

	"github.com/elonfeng/paperadar/pkg/paper"
)

// rankingConfig pins the cutoff to the test clock's year so the filter
// behaves the same regardless of when the tests run.
func rankingConfig() Config {
	cfg := DefaultConfig()
	cfg.CutoffYear = testNow.Year()
	return cfg
}

func TestFilterByYear(t *testing.T) {
	records := []paper.Record{
		{ID: "old", Published: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "last-day-before", Published: time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)},
		{ID: "first-day", Published: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "next-year", Published: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	kept := FilterByYear(records, 2025)

	if len(kept) != 2 {
		t.Fatalf("FilterByYear kept %d records, want 2", len(kept))
	}
	if kept[0].ID != "first-day" || kept[1].ID != "next-year" {
		t.Errorf("FilterByYear kept %q and %q, want first-day and next-year", kept[0].ID, kept[1].ID)
	}
}

func TestRankOrdering(t *testing.T) {
	s := newTestScorer(rankingConfig())

	// Scores: mid=105, top=220, low=55. Input deliberately shuffled.
	records := []paper.Record{
		{ID: "low", Title: "Low", Stars: 2, Published: daysAgo(25), Venue: "none", HasArxiv: true},
		{ID: "top", Title: "Top", Stars: 12, Published: daysAgo(5), Venue: "ICLR 2025", HasArxiv: true, HasCode: true},
		{ID: "mid", Title: "Mid", Stars: 7, Published: daysAgo(45), Venue: "none", HasArxiv: true, HasCode: true},
	}

	ranking, err := s.Rank(records)
	if err != nil {
		t.Fatalf("Rank() unexpected error: %v", err)
	}

	wantOrder := []string{"top", "mid", "low"}
	wantFinals := []int{220, 105, 55}
	if len(ranking.Candidates) != len(wantOrder) {
		t.Fatalf("Rank() returned %d candidates, want %d", len(ranking.Candidates), len(wantOrder))
	}
	for i, want := range wantOrder {
		got := ranking.Candidates[i]
		if got.Record.ID != want {
			t.Errorf("position %d = %q, want %q", i, got.Record.ID, want)
		}
		if got.Breakdown.Final != wantFinals[i] {
			t.Errorf("position %d final = %d, want %d", i, got.Breakdown.Final, wantFinals[i])
		}
	}
	if ranking.Best().Record.ID != "top" {
		t.Errorf("Best() = %q, want top", ranking.Best().Record.ID)
	}
	if ranking.Fallback {
		t.Error("Fallback = true for an in-range batch, want false")
	}
}

func TestRankTieBreaks(t *testing.T) {
	s := newTestScorer(rankingConfig())

	t.Run("higher trending total wins the tie", func(t *testing.T) {
		// Both final 65: "validated" gets there with trending 40 + validation 25,
		// "intrinsic" with trending 65 alone.
		records := []paper.Record{
			{ID: "validated", Stars: 3, Published: daysAgo(45), Venue: "none", HasArxiv: true, HasCode: true},
			{ID: "intrinsic", Stars: 4, Published: daysAgo(20), Venue: "none"},
		}

		ranking, err := s.Rank(records)
		if err != nil {
			t.Fatalf("Rank() unexpected error: %v", err)
		}
		if got := ranking.Best().Record.ID; got != "intrinsic" {
			t.Errorf("Best() = %q, want intrinsic (higher trending total)", got)
		}
	})

	t.Run("higher stars wins when trending also ties", func(t *testing.T) {
		// Both trending 60 and final 70, but star counts differ.
		records := []paper.Record{
			{ID: "fresh", Stars: 1, Published: daysAgo(5), Venue: "none", HasArxiv: true},
			{ID: "starred", Stars: 5, Published: daysAgo(60), Venue: "none", HasArxiv: true},
		}

		ranking, err := s.Rank(records)
		if err != nil {
			t.Fatalf("Rank() unexpected error: %v", err)
		}
		if got := ranking.Best().Record.ID; got != "starred" {
			t.Errorf("Best() = %q, want starred (higher star count)", got)
		}
	})

	t.Run("full tie preserves batch order", func(t *testing.T) {
		records := []paper.Record{
			{ID: "first", Stars: 2, Published: daysAgo(10), Venue: "none", HasArxiv: true},
			{ID: "second", Stars: 2, Published: daysAgo(10), Venue: "none", HasArxiv: true},
		}

		ranking, err := s.Rank(records)
		if err != nil {
			t.Fatalf("Rank() unexpected error: %v", err)
		}
		if ranking.Candidates[0].Record.ID != "first" || ranking.Candidates[1].Record.ID != "second" {
			t.Errorf("tie order = [%s %s], want batch order [first second]",
				ranking.Candidates[0].Record.ID, ranking.Candidates[1].Record.ID)
		}
	})
}

func TestRankDeterministic(t *testing.T) {
	s := newTestScorer(rankingConfig())

	records := []paper.Record{
		{ID: "a", Stars: 4, Published: daysAgo(3), Venue: "ACL 2025", HasArxiv: true},
		{ID: "b", Stars: 4, Published: daysAgo(3), Venue: "ACL 2025", HasArxiv: true},
		{ID: "c", Stars: 9, Published: daysAgo(40), Venue: "none", HasCode: true},
		{ID: "d", Stars: 0, Published: daysAgo(1), Venue: "none", HasArxiv: true},
	}

	first, err := s.Rank(records)
	if err != nil {
		t.Fatalf("Rank() unexpected error: %v", err)
	}
	second, err := s.Rank(records)
	if err != nil {
		t.Fatalf("Rank() unexpected error: %v", err)
	}

	for i := range first.Candidates {
		if first.Candidates[i].Record.ID != second.Candidates[i].Record.ID {
			t.Fatalf("position %d differs between runs: %q vs %q",
				i, first.Candidates[i].Record.ID, second.Candidates[i].Record.ID)
		}
		if first.Candidates[i].Breakdown != second.Candidates[i].Breakdown {
			t.Fatalf("breakdown at position %d differs between runs", i)
		}
	}
}

func TestRankFallback(t *testing.T) {
	s := newTestScorer(rankingConfig())

	// Everything predates the cutoff year: the filter empties the batch
	// and ranking proceeds over the full batch with the flag set.
	records := []paper.Record{
		{ID: "old-a", Stars: 5, Published: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC), Venue: "none", HasArxiv: true},
		{ID: "old-b", Stars: 1, Published: time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC), Venue: "none"},
	}

	ranking, err := s.Rank(records)
	if err != nil {
		t.Fatalf("Rank() unexpected error: %v", err)
	}
	if !ranking.Fallback {
		t.Error("Fallback = false, want true when the year filter empties the batch")
	}
	if len(ranking.Candidates) != 2 {
		t.Errorf("fallback ranked %d candidates, want the full batch of 2", len(ranking.Candidates))
	}
	if ranking.Best().Record.ID != "old-a" {
		t.Errorf("Best() = %q, want old-a", ranking.Best().Record.ID)
	}
}

func TestRankNoCandidates(t *testing.T) {
	s := newTestScorer(rankingConfig())

	_, err := s.Rank(nil)
	if err == nil {
		t.Fatal("Rank(nil) expected error, got none")
	}
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Rank(nil) error = %v, want ErrNoCandidates", err)
	}
}
