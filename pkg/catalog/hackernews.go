package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/elonfeng/paperadar/pkg/paper"
)

// Overridable in tests.
var hnBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNews surfaces papers that hit the Hacker News front page. Only
// stories linking to arXiv abstracts are kept; everything else on HN is
// not a paper.
type HackerNews struct {
	client *http.Client
	limit  int
	filter *Filter
}

// NewHackerNews creates an HN paper collector.
func NewHackerNews(limit int, filter *Filter) *HackerNews {
	if limit <= 0 {
		limit = 50
	}
	return &HackerNews{
		client: &http.Client{Timeout: 30 * time.Second},
		limit:  limit,
		filter: filter,
	}
}

func (h *HackerNews) Name() SourceType { return SourceHackerNews }

func (h *HackerNews) Fetch(ctx context.Context) ([]paper.Raw, error) {
	ids, err := h.fetchTopStories(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}

	// Fetch stories concurrently but keep front-page order: the slot per
	// story ID makes the merged batch deterministic.
	var (
		results = make([]*paper.Raw, len(ids))
		wg      sync.WaitGroup
		sem     = make(chan struct{}, 10) // concurrency limit
	)

	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			story, err := h.fetchItem(ctx, id)
			if err != nil || story == nil {
				return
			}
			if !strings.Contains(story.URL, "arxiv.org/abs/") {
				return
			}
			if h.filter != nil && !h.filter.Matches(story.Title) {
				return
			}

			results[i] = &paper.Raw{
				ID:        fmt.Sprintf("hackernews:%d", story.ID),
				Source:    string(SourceHackerNews),
				Title:     story.Title,
				Published: time.Unix(story.Time, 0).UTC().Format(time.RFC3339),
				URL:       story.URL,
			}
		}(i, id)
	}
	wg.Wait()

	var raws []paper.Raw
	for _, r := range results {
		if r != nil {
			raws = append(raws, *r)
		}
	}
	return raws, nil
}

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

func (h *HackerNews) fetchTopStories(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hnBaseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create hn request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn top stories: %w", err)
	}
	defer resp.Body.Close()

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode hn top stories: %w", err)
	}
	return ids, nil
}

func (h *HackerNews) fetchItem(ctx context.Context, id int) (*hnStory, error) {
	url := fmt.Sprintf("%s/item/%d.json", hnBaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create hn item request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn item %d: %w", id, err)
	}
	defer resp.Body.Close()

	var story hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil, fmt.Errorf("decode hn item %d: %w", id, err)
	}

	if story.Type != "story" {
		return nil, nil
	}
	return &story, nil
}
