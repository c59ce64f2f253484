package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/paperadar/pkg/catalog"
	"github.com/elonfeng/paperadar/pkg/paper"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "paperadar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPaper(id string, src catalog.SourceType, stars int) paper.Record {
	return paper.Record{
		ID:        id,
		Source:    string(src),
		Title:     "Paper " + id,
		Abstract:  "an abstract",
		URL:       "https://arxiv.org/abs/" + id,
		Stars:     stars,
		Venue:     "none",
		Published: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpsertAndListPapers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recs := []paper.Record{
		testPaper("pwc:a", catalog.SourcePapersWithCode, 5),
		testPaper("arxiv:b", catalog.SourceArXiv, 0),
	}
	require.NoError(t, s.UpsertPapers(ctx, recs))

	got, err := s.ListPapers(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]paper.Record{}
	for _, r := range got {
		byID[r.ID] = r
	}
	a := byID["pwc:a"]
	assert.Equal(t, "Paper pwc:a", a.Title)
	assert.Equal(t, 5, a.Stars)
	assert.Equal(t, "none", a.Venue)
	assert.WithinDuration(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), a.Published, time.Second)
}

func TestUpsertPaperUpdatesVolatileFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testPaper("pwc:a", catalog.SourcePapersWithCode, 5)
	require.NoError(t, s.UpsertPaper(ctx, &rec))

	rec.Stars = 120
	rec.Venue = "ICLR 2025"
	rec.RepoURL = "https://github.com/acme/a"
	rec.HasCode = true
	require.NoError(t, s.UpsertPaper(ctx, &rec))

	got, err := s.ListPapers(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, got, 1, "upsert must not duplicate the row")
	assert.Equal(t, 120, got[0].Stars)
	assert.Equal(t, "ICLR 2025", got[0].Venue)
	assert.True(t, got[0].HasCode)
}

func TestListPapersFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertPapers(ctx, []paper.Record{
		testPaper("pwc:a", catalog.SourcePapersWithCode, 1),
		testPaper("pwc:b", catalog.SourcePapersWithCode, 2),
		testPaper("arxiv:c", catalog.SourceArXiv, 0),
	}))

	bySource, err := s.ListPapers(ctx, ListOpts{Source: catalog.SourcePapersWithCode})
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	fresh, err := s.ListPapers(ctx, ListOpts{Since: time.Now().UTC().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, fresh, 3)

	stale, err := s.ListPapers(ctx, ListOpts{Since: time.Now().UTC().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, stale)

	limited, err := s.ListPapers(ctx, ListOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCountPapersBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertPapers(ctx, []paper.Record{
		testPaper("pwc:a", catalog.SourcePapersWithCode, 1),
		testPaper("pwc:b", catalog.SourcePapersWithCode, 2),
		testPaper("hn:c", catalog.SourceHackerNews, 0),
	}))

	counts, err := s.CountPapersBySource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[catalog.SourcePapersWithCode])
	assert.Equal(t, 1, counts[catalog.SourceHackerNews])
	assert.Equal(t, 0, counts[catalog.SourceArXiv])
}

func TestSavePickAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &Pick{
		PaperID:    "pwc:a",
		Title:      "Paper pwc:a",
		URL:        "https://arxiv.org/abs/a",
		FinalScore: 220,
		Post:       "✨ the post",
	}
	require.NoError(t, s.SavePick(ctx, p))
	assert.Positive(t, p.ID, "SavePick must assign the row id")
	assert.False(t, p.PickedAt.IsZero(), "SavePick must default picked_at")

	picks, err := s.ListPicks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "pwc:a", picks[0].PaperID)
	assert.Equal(t, 220, picks[0].FinalScore)
	assert.Equal(t, "✨ the post", picks[0].Post)
	assert.False(t, picks[0].Notified)

	require.NoError(t, s.MarkNotified(ctx, p.ID))
	picks, err = s.ListPicks(ctx, 10)
	require.NoError(t, err)
	assert.True(t, picks[0].Notified)
}

func TestListPicksOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := &Pick{PaperID: "old", Title: "old", FinalScore: 10,
		PickedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	recent := &Pick{PaperID: "recent", Title: "recent", FinalScore: 20,
		PickedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, s.SavePick(ctx, old))
	require.NoError(t, s.SavePick(ctx, recent))

	picks, err := s.ListPicks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.Equal(t, "recent", picks[0].PaperID)
	assert.Equal(t, "old", picks[1].PaperID)
}

func TestRecentPickIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePick(ctx, &Pick{PaperID: "old", Title: "old", FinalScore: 10,
		PickedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}))
	require.NoError(t, s.SavePick(ctx, &Pick{PaperID: "recent", Title: "recent", FinalScore: 20,
		PickedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)}))

	seen, err := s.RecentPickIDs(ctx, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, seen["recent"])
	assert.False(t, seen["old"])
}
