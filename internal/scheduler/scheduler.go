package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/elonfeng/paperadar/internal/store"
	"github.com/elonfeng/paperadar/pkg/alert"
	"github.com/elonfeng/paperadar/pkg/catalog"
	"github.com/elonfeng/paperadar/pkg/paper"
	"github.com/elonfeng/paperadar/pkg/trend"
	"github.com/elonfeng/paperadar/pkg/writer"
)

// Options configures scheduler timing and alert gating.
type Options struct {
	CollectInterval time.Duration
	PostHour        int
	PostMinute      int
	Location        *time.Location
	Cooldown        time.Duration
	MinScore        int
}

// Scheduler runs periodic collection and the daily pick.
type Scheduler struct {
	store    store.Store
	sources  []catalog.Source
	scorer   *trend.Scorer
	composer *writer.Composer // nil when no LLM key is configured
	alertMgr *alert.Manager
	opts     Options
}

// New creates a new scheduler.
func New(
	s store.Store,
	sources []catalog.Source,
	scorer *trend.Scorer,
	composer *writer.Composer,
	alertMgr *alert.Manager,
	opts Options,
) *Scheduler {
	if opts.CollectInterval <= 0 {
		opts.CollectInterval = 6 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 14 * 24 * time.Hour
	}
	return &Scheduler{
		store:    s,
		sources:  sources,
		scorer:   scorer,
		composer: composer,
		alertMgr: alertMgr,
		opts:     opts,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	collectTicker := time.NewTicker(s.opts.CollectInterval)
	defer collectTicker.Stop()

	c := cron.New(cron.WithLocation(s.opts.Location))
	spec := fmt.Sprintf("%d %d * * *", s.opts.PostMinute, s.opts.PostHour)
	if _, err := c.AddFunc(spec, func() { s.postDaily(ctx) }); err != nil {
		return fmt.Errorf("schedule daily post: %w", err)
	}
	c.Start()
	defer c.Stop()

	// Collect immediately on start so the first daily post has data.
	fmt.Fprintln(os.Stderr, "scheduler: initial collection...")
	s.collect(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (collect every %s, post daily at %02d:%02d %s)\n",
		s.opts.CollectInterval, s.opts.PostHour, s.opts.PostMinute, s.opts.Location)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-collectTicker.C:
			fmt.Fprintln(os.Stderr, "scheduler: collecting...")
			s.collect(ctx)
		}
	}
}

func (s *Scheduler) collect(ctx context.Context) {
	raws := catalog.FetchAll(ctx, s.sources)
	recs, errs := paper.NormalizeAll(raws)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  skip: %v\n", err)
	}

	if err := s.store.UpsertPapers(ctx, recs); err != nil {
		fmt.Fprintf(os.Stderr, "  store error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "  stored %d of %d papers\n", len(recs), len(raws))
}

// postDaily fetches a fresh batch, ranks it and broadcasts the pick.
func (s *Scheduler) postDaily(ctx context.Context) {
	fmt.Fprintln(os.Stderr, "scheduler: picking today's paper...")

	raws := catalog.FetchAll(ctx, s.sources)
	recs, errs := paper.NormalizeAll(raws)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  skip: %v\n", err)
	}
	if err := s.store.UpsertPapers(ctx, recs); err != nil {
		fmt.Fprintf(os.Stderr, "  store error: %v\n", err)
	}

	// Keep recently picked papers out of the running.
	seen, err := s.store.RecentPickIDs(ctx, time.Now().UTC().Add(-s.opts.Cooldown))
	if err != nil {
		fmt.Fprintf(os.Stderr, "  pick history error: %v\n", err)
		seen = nil
	}
	var candidates []paper.Record
	for _, rec := range recs {
		if seen[rec.ID] {
			continue
		}
		candidates = append(candidates, rec)
	}

	ranking, err := s.scorer.Rank(candidates)
	if err != nil {
		if errors.Is(err, trend.ErrNoCandidates) {
			fmt.Fprintln(os.Stderr, "  no candidates today")
		} else {
			fmt.Fprintf(os.Stderr, "  ranking error: %v\n", err)
		}
		return
	}

	best := ranking.Best()
	fmt.Fprintf(os.Stderr, "  pick: %s (score %d)\n", best.Record.Title, best.Breakdown.Final)
	if ranking.Fallback {
		fmt.Fprintln(os.Stderr, "  year filter matched nothing, ranked the full batch")
	}

	body := fallbackBody(best)
	var postText string
	if s.composer != nil {
		post, err := s.composer.Compose(ctx, best)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  compose error: %v\n", err)
		} else {
			body = post.Text
			postText = post.Text
		}
	}

	pick := &store.Pick{
		PaperID:    best.Record.ID,
		Title:      best.Record.Title,
		URL:        best.Record.URL,
		FinalScore: best.Breakdown.Final,
		Fallback:   ranking.Fallback,
		Post:       postText,
	}
	if err := s.store.SavePick(ctx, pick); err != nil {
		fmt.Fprintf(os.Stderr, "  save pick error: %v\n", err)
		return
	}

	if !s.alertMgr.HasNotifiers() {
		return
	}
	if best.Breakdown.Final < s.opts.MinScore {
		fmt.Fprintf(os.Stderr, "  score %d below alert threshold %d, skipping notification\n",
			best.Breakdown.Final, s.opts.MinScore)
		return
	}

	n := alert.NewNotification(best, body, ranking.Fallback)
	if err := s.alertMgr.Broadcast(ctx, n); err != nil {
		fmt.Fprintf(os.Stderr, "  alert error: %v\n", err)
		return
	}
	_ = s.store.MarkNotified(ctx, pick.ID)
	fmt.Fprintf(os.Stderr, "  notified: %s\n", best.Record.Title)
}

// fallbackBody is the notification text used when no composer is configured.
func fallbackBody(cand trend.Candidate) string {
	rec := cand.Record
	return fmt.Sprintf("✨ Today's top AI paper: %s\n\n📎 %s\n⭐ %d stars · 🎯 score %d",
		rec.Title, rec.URL, rec.Stars, cand.Breakdown.Final)
}
