package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/elonfeng/paperadar/pkg/paper"
)

// Overridable in tests.
var arxivBaseURL = "https://export.arxiv.org/api/query"

// ArXiv fetches fresh preprints from the arXiv Atom API. Preprints carry
// no stars or venue, so they rank on recency and the arXiv signal alone.
type ArXiv struct {
	client     *http.Client
	parser     *gofeed.Parser
	categories []string
	maxResults int
	filter     *Filter
}

// NewArXiv creates an arXiv collector.
func NewArXiv(categories []string, maxResults int, filter *Filter) *ArXiv {
	if len(categories) == 0 {
		categories = []string{"cs.LG", "cs.CL", "cs.CV", "cs.AI"}
	}
	if maxResults <= 0 {
		maxResults = 25
	}
	return &ArXiv{
		client:     &http.Client{Timeout: 30 * time.Second},
		parser:     gofeed.NewParser(),
		categories: categories,
		maxResults: maxResults,
		filter:     filter,
	}
}

func (a *ArXiv) Name() SourceType { return SourceArXiv }

func (a *ArXiv) Fetch(ctx context.Context) ([]paper.Raw, error) {
	// Build search query: cat:cs.LG OR cat:cs.CL OR ...
	var parts []string
	for _, cat := range a.categories {
		parts = append(parts, "cat:"+cat)
	}
	query := strings.Join(parts, "+OR+")

	// The arXiv API expects unencoded +OR+ in the search query, so build
	// the URL manually.
	reqURL := fmt.Sprintf("%s?search_query=%s&sortBy=submittedDate&sortOrder=descending&max_results=%d",
		arxivBaseURL, query, a.maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create arxiv request: %w", err)
	}
	req.Header.Set("User-Agent", "paperadar/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv status %d", resp.StatusCode)
	}

	feed, err := a.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse arxiv feed: %w", err)
	}

	var raws []paper.Raw
	for _, entry := range feed.Items {
		title := strings.Join(strings.Fields(entry.Title), " ")
		abstract := strings.TrimSpace(entry.Description)

		if a.filter != nil && !a.filter.Matches(title+" "+abstract) {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		raws = append(raws, paper.Raw{
			ID:        fmt.Sprintf("arxiv:%s", extractArXivID(link)),
			Source:    string(SourceArXiv),
			Title:     title,
			Abstract:  abstract,
			Published: entry.Published,
			URL:       link,
		})
	}

	return raws, nil
}

// extractArXivID turns "http://arxiv.org/abs/2402.12345v1" into "2402.12345".
func extractArXivID(uri string) string {
	parts := strings.Split(uri, "/abs/")
	if len(parts) == 2 {
		id := parts[1]
		if idx := strings.LastIndex(id, "v"); idx > 0 {
			id = id[:idx]
		}
		return id
	}
	return uri
}
