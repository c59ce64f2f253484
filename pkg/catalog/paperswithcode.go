package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/elonfeng/paperadar/pkg/paper"
)

const defaultPwCBaseURL = "https://paperswithcode.com"

// PapersWithCode fetches the trending papers feed from a
// Papers-with-Code-style catalog API.
type PapersWithCode struct {
	client  *http.Client
	baseURL string
	perPage int
	filter  *Filter
}

// NewPapersWithCode creates a trending-catalog collector. baseURL is
// overridable for self-hosted mirrors; empty means the public catalog.
func NewPapersWithCode(baseURL string, perPage int, filter *Filter) *PapersWithCode {
	if baseURL == "" {
		baseURL = defaultPwCBaseURL
	}
	if perPage <= 0 {
		perPage = 25
	}
	return &PapersWithCode{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		perPage: perPage,
		filter:  filter,
	}
}

func (p *PapersWithCode) Name() SourceType { return SourcePapersWithCode }

func (p *PapersWithCode) Fetch(ctx context.Context) ([]paper.Raw, error) {
	params := url.Values{}
	params.Set("order", "trending")
	params.Set("per_page", fmt.Sprintf("%d", p.perPage))

	reqURL := p.baseURL + "/api/v1/papers/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "paperadar/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trending papers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog API status %d", resp.StatusCode)
	}

	var result pwcResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	var raws []paper.Raw
	for _, pp := range result.Results {
		if p.filter != nil && !p.filter.Matches(pp.Title+" "+pp.Abstract) {
			continue
		}

		externalID := pp.ID
		if externalID == "" {
			externalID = pp.URLAbs
		}

		raws = append(raws, paper.Raw{
			ID:        fmt.Sprintf("pwc:%s", externalID),
			Source:    string(SourcePapersWithCode),
			Title:     pp.Title,
			Abstract:  pp.Abstract,
			Published: pp.Published,
			URL:       pp.URLAbs,
			RepoURL:   pp.RepoURL,
			Stars:     pp.GithubStars,
			Venue:     pp.Conference,
		})
	}

	return raws, nil
}

// Catalog wire format. Absent github_stars and conference come back as
// JSON null, which decodes to the zero value.
type pwcResponse struct {
	Count   int        `json:"count"`
	Results []pwcPaper `json:"results"`
}

type pwcPaper struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Abstract    string `json:"abstract"`
	URLAbs      string `json:"url_abs"`
	URLPDF      string `json:"url_pdf"`
	RepoURL     string `json:"repo_url"`
	Published   string `json:"published"`
	Conference  string `json:"conference"`
	GithubStars int    `json:"github_stars"`
}
