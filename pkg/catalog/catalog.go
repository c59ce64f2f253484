package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/elonfeng/paperadar/pkg/paper"
)

// SourceType identifies which catalog a paper came from.
type SourceType string

const (
	SourcePapersWithCode SourceType = "paperswithcode"
	SourceArXiv          SourceType = "arxiv"
	SourceHackerNews     SourceType = "hackernews"
)

// Source is the interface every paper catalog must implement. Sources
// return raw records as-is; validation happens in paper.Normalize.
type Source interface {
	Name() SourceType
	Fetch(ctx context.Context) ([]paper.Raw, error)
}

// AllSourceTypes returns all known source types.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourcePapersWithCode,
		SourceArXiv,
		SourceHackerNews,
	}
}

// FetchAll queries every source concurrently and merges the results in
// source order, so the combined batch is deterministic run to run. A
// failing source is logged and skipped; the others still contribute.
func FetchAll(ctx context.Context, sources []Source) []paper.Raw {
	results := make([][]paper.Raw, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			raws, err := src.Fetch(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  %s error: %v\n", src.Name(), err)
				return
			}
			results[i] = raws
		}(i, src)
	}
	wg.Wait()

	var merged []paper.Raw
	for _, raws := range results {
		merged = append(merged, raws...)
	}
	return merged
}
