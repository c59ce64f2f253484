package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/elonfeng/paperadar/internal/config"
	"github.com/elonfeng/paperadar/internal/scheduler"
	"github.com/elonfeng/paperadar/internal/store"
	"github.com/elonfeng/paperadar/pkg/alert"
	"github.com/elonfeng/paperadar/pkg/catalog"
	"github.com/elonfeng/paperadar/pkg/paper"
	"github.com/elonfeng/paperadar/pkg/server"
	"github.com/elonfeng/paperadar/pkg/trend"
	"github.com/elonfeng/paperadar/pkg/writer"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildSources(cfg *config.Config) []catalog.Source {
	filter := catalog.NewFilter(cfg.Filter.FocusKeywords, cfg.Filter.ExcludeKeywords)
	var sources []catalog.Source

	if cfg.Catalog.PapersWithCode.Enabled {
		sources = append(sources, catalog.NewPapersWithCode(
			cfg.Catalog.PapersWithCode.BaseURL,
			cfg.Catalog.PapersWithCode.PerPage,
			filter,
		))
	}
	if cfg.Catalog.ArXiv.Enabled {
		sources = append(sources, catalog.NewArXiv(
			cfg.Catalog.ArXiv.Categories,
			cfg.Catalog.ArXiv.MaxResults,
			filter,
		))
	}
	if cfg.Catalog.HackerNews.Enabled {
		sources = append(sources, catalog.NewHackerNews(cfg.Catalog.HackerNews.Limit, filter))
	}

	return sources
}

func buildScorer(cfg *config.Config) *trend.Scorer {
	return trend.NewScorer(cfg.Scoring)
}

// buildComposer returns nil when no LLM key is configured; picks then go
// out with a plain-text body.
func buildComposer(cfg *config.Config) *writer.Composer {
	if cfg.Writer.APIKey == "" {
		return nil
	}
	llm := writer.NewClient(cfg.Writer.Provider, cfg.Writer.Model, cfg.Writer.APIKey, cfg.Writer.BaseURL)
	fmt.Fprintf(os.Stderr, "writer: %s/%s\n", cfg.Writer.Provider, llm.Model())
	return writer.NewComposer(llm, cfg.Writer.WordLimit, cfg.Writer.Hashtags)
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}
	if cfg.Alerts.Telegram.Enabled && cfg.Alerts.Telegram.Token != "" {
		tg, err := alert.NewTelegram(cfg.Alerts.Telegram.Token, cfg.Alerts.Telegram.ChatID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telegram disabled: %v\n", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	return alert.NewManager(notifiers)
}

func runCollect(filterSources []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	allSources := buildSources(cfg)

	// Filter to requested sources only.
	var sources []catalog.Source
	if len(filterSources) > 0 {
		wanted := make(map[string]bool)
		for _, s := range filterSources {
			wanted[strings.ToLower(strings.TrimSpace(s))] = true
		}
		for _, s := range allSources {
			if wanted[string(s.Name())] || wanted[shortName(s.Name())] {
				sources = append(sources, s)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("no matching sources for: %s", strings.Join(filterSources, ", "))
		}
	} else {
		sources = allSources
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources enabled")
	}

	ctx := context.Background()
	total, skipped := 0, 0

	for _, src := range sources {
		fmt.Fprintf(os.Stderr, "fetching from %s...\n", src.Name())
		raws, err := src.Fetch(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  error: %v\n", err)
			continue
		}

		recs, errs := paper.NormalizeAll(raws)
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "  skip: %v\n", err)
		}
		skipped += len(errs)

		if err := db.UpsertPapers(ctx, recs); err != nil {
			fmt.Fprintf(os.Stderr, "  store error: %v\n", err)
			continue
		}

		fmt.Fprintf(os.Stderr, "  stored %d papers\n", len(recs))
		total += len(recs)
	}

	fmt.Fprintf(os.Stderr, "\ntotal: %d papers from %d sources (%d skipped)\n",
		total, len(sources), skipped)

	if counts, err := db.CountPapersBySource(ctx); err == nil {
		for _, src := range catalog.AllSourceTypes() {
			if n := counts[src]; n > 0 {
				fmt.Fprintf(os.Stderr, "  %s: %d in store\n", src, n)
			}
		}
	}
	return nil
}

func runRank(jsonOutput bool, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sources := buildSources(cfg)
	if len(sources) == 0 {
		return fmt.Errorf("no sources enabled")
	}

	ctx := context.Background()
	raws := catalog.FetchAll(ctx, sources)
	recs, errs := paper.NormalizeAll(raws)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "skip: %v\n", err)
	}

	ranking, err := buildScorer(cfg).Rank(recs)
	if err != nil {
		return err
	}

	cands := ranking.Candidates
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"candidates": cands,
			"fallback":   ranking.Fallback,
		})
	}

	if ranking.Fallback {
		fmt.Fprintln(os.Stderr, "note: year filter matched nothing, ranked the full batch")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINAL\tTREND\tVALID\tSTARS\tVENUE\tTITLE")
	for _, c := range cands {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\n",
			c.Breakdown.Final, c.Breakdown.Trending.Total, c.Breakdown.Validation.Total,
			c.Record.Stars, c.Record.Venue, c.Record.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best := ranking.Best()
	fmt.Printf("\nselected: %s\n", best.Record.Title)
	fmt.Printf("  github %d + recency %d + conference %d = trending %d\n",
		best.Breakdown.Trending.Stars, best.Breakdown.Trending.Recency,
		best.Breakdown.Trending.Conference, best.Breakdown.Trending.Total)
	fmt.Printf("  arxiv %d + code %d + venue %d = validation %d\n",
		best.Breakdown.Validation.Arxiv, best.Breakdown.Validation.Code,
		best.Breakdown.Validation.Venue, best.Breakdown.Validation.Total)
	fmt.Printf("  final %d\n", best.Breakdown.Final)
	if best.Record.URL != "" {
		fmt.Printf("  %s\n", best.Record.URL)
	}
	return nil
}

func runWrite(dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sources := buildSources(cfg)
	if len(sources) == 0 {
		return fmt.Errorf("no sources enabled")
	}

	composer := buildComposer(cfg)
	if composer == nil {
		return fmt.Errorf("no LLM API key configured (set OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	raws := catalog.FetchAll(ctx, sources)
	recs, errs := paper.NormalizeAll(raws)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "skip: %v\n", err)
	}
	if err := db.UpsertPapers(ctx, recs); err != nil {
		fmt.Fprintf(os.Stderr, "store error: %v\n", err)
	}

	seen, err := db.RecentPickIDs(ctx, time.Now().UTC().Add(-cfg.Schedule.Cooldown()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "pick history error: %v\n", err)
	}
	var candidates []paper.Record
	for _, rec := range recs {
		if seen[rec.ID] {
			continue
		}
		candidates = append(candidates, rec)
	}

	ranking, err := buildScorer(cfg).Rank(candidates)
	if err != nil {
		return err
	}

	best := ranking.Best()
	if ranking.Fallback {
		fmt.Fprintln(os.Stderr, "note: year filter matched nothing, ranked the full batch")
	}
	fmt.Fprintf(os.Stderr, "pick: %s (score %d)\n", best.Record.Title, best.Breakdown.Final)

	post, err := composer.Compose(ctx, best)
	if err != nil {
		return fmt.Errorf("compose post: %w", err)
	}

	fmt.Println(strings.Repeat("─", 60))
	fmt.Println(post.Text)
	fmt.Println(strings.Repeat("─", 60))

	if dryRun {
		fmt.Fprintln(os.Stderr, "dry run, nothing posted or recorded")
		return nil
	}

	pick := &store.Pick{
		PaperID:    best.Record.ID,
		Title:      best.Record.Title,
		URL:        best.Record.URL,
		FinalScore: best.Breakdown.Final,
		Fallback:   ranking.Fallback,
		Post:       post.Text,
	}
	if err := db.SavePick(ctx, pick); err != nil {
		return fmt.Errorf("save pick: %w", err)
	}

	alertMgr := buildAlertManager(cfg)
	if !alertMgr.HasNotifiers() {
		fmt.Fprintln(os.Stderr, "no alert destinations configured, pick recorded only")
		return nil
	}
	if best.Breakdown.Final < cfg.Alerts.MinScore {
		fmt.Fprintf(os.Stderr, "score %d below alert threshold %d, pick recorded only\n",
			best.Breakdown.Final, cfg.Alerts.MinScore)
		return nil
	}

	n := alert.NewNotification(best, post.Text, ranking.Fallback)
	if err := alertMgr.Broadcast(ctx, n); err != nil {
		return fmt.Errorf("broadcast: %w", err)
	}
	_ = db.MarkNotified(ctx, pick.ID)
	fmt.Fprintln(os.Stderr, "posted")
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, buildScorer(cfg), buildSources(cfg), port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	sources := buildSources(cfg)
	scorer := buildScorer(cfg)
	composer := buildComposer(cfg)
	alertMgr := buildAlertManager(cfg)

	hour, minute, err := cfg.Schedule.ParsePostTime()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, sources, scorer, composer, alertMgr, scheduler.Options{
		CollectInterval: cfg.Schedule.ParseCollectInterval(),
		PostHour:        hour,
		PostMinute:      minute,
		Location:        cfg.Schedule.Location(),
		Cooldown:        cfg.Schedule.Cooldown(),
		MinScore:        cfg.Alerts.MinScore,
	})

	// Start scheduler in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	// Start HTTP server.
	srv := server.New(db, scorer, sources, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}

func shortName(st catalog.SourceType) string {
	switch st {
	case catalog.SourcePapersWithCode:
		return "pwc"
	case catalog.SourceArXiv:
		return "arxiv"
	case catalog.SourceHackerNews:
		return "hn"
	}
	return string(st)
}
