package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/paperadar/pkg/catalog"
	"github.com/elonfeng/paperadar/pkg/paper"
)

// Pick records one daily selection and the post that went with it. Only
// the final score is kept; full breakdowns are recomputed on demand.
type Pick struct {
	ID         int64     `db:"id" json:"id"`
	PaperID    string    `db:"paper_id" json:"paper_id"`
	Title      string    `db:"title" json:"title"`
	URL        string    `db:"url" json:"url"`
	FinalScore int       `db:"final_score" json:"final_score"`
	Fallback   bool      `db:"fallback" json:"fallback"`
	Post       string    `db:"post" json:"post,omitempty"`
	PickedAt   time.Time `db:"picked_at" json:"picked_at"`
	Notified   bool      `db:"notified" json:"notified"`
}

// ListOpts controls paper listing.
type ListOpts struct {
	Source catalog.SourceType
	Since  time.Time
	Limit  int
}

// Store is the persistence interface.
type Store interface {
	UpsertPaper(ctx context.Context, rec *paper.Record) error
	UpsertPapers(ctx context.Context, recs []paper.Record) error
	ListPapers(ctx context.Context, opts ListOpts) ([]paper.Record, error)
	CountPapersBySource(ctx context.Context) (map[catalog.SourceType]int, error)

	SavePick(ctx context.Context, p *Pick) error
	ListPicks(ctx context.Context, limit int) ([]Pick, error)
	RecentPickIDs(ctx context.Context, since time.Time) (map[string]bool, error)
	MarkNotified(ctx context.Context, pickID int64) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// paperColumns lists the columns that map onto paper.Record. fetched_at
// stays table-internal.
const paperColumns = "id, source, title, abstract, url, repo_url, stars, venue, published, has_arxiv, has_code"

func (s *SQLiteStore) UpsertPaper(ctx context.Context, rec *paper.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO papers (id, source, title, abstract, url, repo_url, stars, venue, published, has_arxiv, has_code, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stars = excluded.stars,
			venue = excluded.venue,
			repo_url = excluded.repo_url,
			has_code = excluded.has_code,
			fetched_at = excluded.fetched_at
	`, rec.ID, rec.Source, rec.Title, rec.Abstract, rec.URL, rec.RepoURL,
		rec.Stars, rec.Venue, rec.Published, rec.HasArxiv, rec.HasCode,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert paper %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertPapers(ctx context.Context, recs []paper.Record) error {
	for i := range recs {
		if err := s.UpsertPaper(ctx, &recs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListPapers(ctx context.Context, opts ListOpts) ([]paper.Record, error) {
	query := "SELECT " + paperColumns + " FROM papers WHERE 1=1"
	var args []any

	if opts.Source != "" {
		query += " AND source = ?"
		args = append(args, opts.Source)
	}
	if !opts.Since.IsZero() {
		query += " AND fetched_at >= ?"
		args = append(args, opts.Since)
	}

	// The id tie keeps equal-timestamp rows in a stable order, so a
	// batch read back from the store ranks the same way every time.
	query += " ORDER BY fetched_at DESC, id"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var recs []paper.Record
	if err := s.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return recs, nil
}

func (s *SQLiteStore) CountPapersBySource(ctx context.Context) (map[catalog.SourceType]int, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT source, COUNT(*) as cnt FROM papers GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("count papers by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[catalog.SourceType]int)
	for rows.Next() {
		var src string
		var cnt int
		if err := rows.Scan(&src, &cnt); err != nil {
			return nil, err
		}
		counts[catalog.SourceType(src)] = cnt
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) SavePick(ctx context.Context, p *Pick) error {
	if p.PickedAt.IsZero() {
		p.PickedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO picks (paper_id, title, url, final_score, fallback, post, picked_at, notified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.PaperID, p.Title, p.URL, p.FinalScore, p.Fallback, p.Post, p.PickedAt, p.Notified)
	if err != nil {
		return fmt.Errorf("save pick %s: %w", p.PaperID, err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ListPicks(ctx context.Context, limit int) ([]Pick, error) {
	if limit <= 0 {
		limit = 50
	}
	var picks []Pick
	err := s.db.SelectContext(ctx, &picks,
		"SELECT * FROM picks ORDER BY picked_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	return picks, nil
}

// RecentPickIDs returns the paper IDs picked since the given time. The
// scheduler uses it to keep recent picks out of the next ranking.
func (s *SQLiteStore) RecentPickIDs(ctx context.Context, since time.Time) (map[string]bool, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT DISTINCT paper_id FROM picks WHERE picked_at >= ?", since)
	if err != nil {
		return nil, fmt.Errorf("recent pick ids: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

func (s *SQLiteStore) MarkNotified(ctx context.Context, pickID int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE picks SET notified = 1 WHERE id = ?", pickID)
	if err != nil {
		return fmt.Errorf("mark notified %d: %w", pickID, err)
	}
	return nil
}
