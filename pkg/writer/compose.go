package writer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elonfeng/paperadar/pkg/trend"
)

const defaultHashtags = "#AI #Research #Innovation #TrendingAI #MachineLearning"

const summaryPrompt = `You are writing for senior technology and product leaders.

Summarize the research paper below in at most %d words. Use plain language,
include exactly one concrete analogy that makes the core idea tangible, and
say in one sentence why it is trending right now (community traction, venue,
freshness). No headings, no bullet points, no hashtags.

Title: %s
Venue: %s
Published: %s
GitHub stars: %d
Abstract: %s`

const hotTakesPrompt = `You are a sharp technology analyst.

For the paper %q, write exactly three short hot takes on how this line of
work could shape the industry over the next 12 months. Each take is one
sentence on its own line, starting with "- ". Be concrete and opinionated;
no preamble and no closing remarks.`

// Post is a composed social post about the selected paper.
type Post struct {
	Summary     string    `json:"summary"`
	HotTakes    string    `json:"hot_takes"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Composer turns the top-ranked paper into a publishable post. Two LLM
// calls: a sober summary at low temperature, hot takes at a higher one.
type Composer struct {
	llm       *Client
	wordLimit int
	hashtags  string
}

// NewComposer creates a composer around an LLM client.
func NewComposer(llm *Client, wordLimit int, hashtags string) *Composer {
	if wordLimit <= 0 {
		wordLimit = 250
	}
	if hashtags == "" {
		hashtags = defaultHashtags
	}
	return &Composer{llm: llm, wordLimit: wordLimit, hashtags: hashtags}
}

// Compose writes the post for the selected candidate.
func (c *Composer) Compose(ctx context.Context, cand trend.Candidate) (*Post, error) {
	rec := cand.Record

	summary, err := c.llm.Chat(ctx, fmt.Sprintf(summaryPrompt,
		c.wordLimit, rec.Title, rec.Venue, rec.Published.Format("2006-01-02"),
		rec.Stars, truncateStr(rec.Abstract, 1200)), 0.65, 512)
	if err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	takes, err := c.llm.Chat(ctx, fmt.Sprintf(hotTakesPrompt, rec.Title), 0.8, 512)
	if err != nil {
		return nil, fmt.Errorf("write hot takes: %w", err)
	}

	return &Post{
		Summary:     summary,
		HotTakes:    takes,
		Text:        c.Format(cand, summary, takes),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// Format assembles the final post text.
func (c *Composer) Format(cand trend.Candidate, summary, takes string) string {
	rec := cand.Record

	var b strings.Builder
	fmt.Fprintf(&b, "✨ Today's top AI paper: %s\n\n", rec.Title)
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\n")
	b.WriteString("🔮 Hot takes:\n")
	b.WriteString(strings.TrimSpace(takes))
	b.WriteString("\n\n")
	if rec.URL != "" {
		fmt.Fprintf(&b, "📎 %s\n", rec.URL)
	}
	fmt.Fprintf(&b, "⭐ %d stars · 📅 %s · 🎯 score %d\n\n",
		rec.Stars, rec.Published.Format("2006-01-02"), cand.Breakdown.Final)
	b.WriteString(c.hashtags)
	return b.String()
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
