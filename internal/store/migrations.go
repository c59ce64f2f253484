package store

const schema = `
CREATE TABLE IF NOT EXISTS papers (
    id         TEXT PRIMARY KEY,
    source     TEXT NOT NULL,
    title      TEXT NOT NULL,
    abstract   TEXT NOT NULL DEFAULT '',
    url        TEXT NOT NULL DEFAULT '',
    repo_url   TEXT NOT NULL DEFAULT '',
    stars      INTEGER NOT NULL DEFAULT 0,
    venue      TEXT NOT NULL DEFAULT 'none',
    published  DATETIME NOT NULL,
    has_arxiv  BOOLEAN NOT NULL DEFAULT 0,
    has_code   BOOLEAN NOT NULL DEFAULT 0,
    fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_papers_source ON papers(source);
CREATE INDEX IF NOT EXISTS idx_papers_fetched_at ON papers(fetched_at);
CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published);
CREATE INDEX IF NOT EXISTS idx_papers_stars ON papers(stars);

CREATE TABLE IF NOT EXISTS picks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    paper_id    TEXT NOT NULL REFERENCES papers(id),
    title       TEXT NOT NULL,
    url         TEXT NOT NULL DEFAULT '',
    final_score INTEGER NOT NULL,
    fallback    BOOLEAN NOT NULL DEFAULT 0,
    post        TEXT NOT NULL DEFAULT '',
    picked_at   DATETIME NOT NULL,
    notified    BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_picks_picked_at ON picks(picked_at);
CREATE INDEX IF NOT EXISTS idx_picks_paper ON picks(paper_id);
`
