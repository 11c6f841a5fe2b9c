// Command scraper runs one scrape-reconcile-publish cycle against an AFM
// disclosure register.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"afmwatch/internal/article"
	"afmwatch/internal/config"
	"afmwatch/internal/fetch"
	"afmwatch/internal/filter"
	"afmwatch/internal/infrastructure"
	"afmwatch/internal/publish"
	"afmwatch/internal/reconcile"
	"afmwatch/internal/register"
	"afmwatch/internal/store"
	"afmwatch/pkg/contracts/domain"
)

func main() {
	registerSlug := flag.String("register", "", "register to scrape: shortpos | holdings (default from config)")
	configPath := flag.String("config", "", "optional YAML config file")
	urlOverride := flag.String("url", "", "override the register page URL")
	maxPosts := flag.Int("max", 0, "override maximum posts per run")
	dryRun := flag.Bool("dry-run", false, "extract and reconcile but do not publish or persist")
	flag.Parse()

	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *registerSlug != "" {
		cfg.Register.Slug = *registerSlug
	}
	if *urlOverride != "" {
		cfg.Register.URL = *urlOverride
	}
	if *maxPosts > 0 {
		cfg.WordPress.MaxPosts = *maxPosts
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *dryRun); err != nil {
		logger.Error("Run aborted", slog.Any("error", err))
		os.Exit(1)
	}
}

// run drives one full cycle: fetch, locate, extract, reconcile, render,
// publish. Structural failures (no table, no export, 403) end the run
// cleanly with zero records; only fetch exhaustion and configuration
// problems are fatal.
func run(ctx context.Context, cfg *config.Config, dryRun bool) error {
	spec, err := loadSpec(cfg)
	if err != nil {
		return err
	}

	slog.Info("Starting register scrape",
		slog.String("register", spec.Slug),
		slog.String("url", spec.URL))

	client := fetch.New(fetch.Options{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		Retries:   cfg.Fetch.Retries,
		Backoff:   cfg.Fetch.Backoff,
	})

	doc, ok, err := loadDocument(ctx, client, spec)
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("Register yielded no parseable source; reporting zero records")
		return nil
	}

	table, err := register.Locate(doc, spec)
	if err != nil {
		if errors.Is(err, register.ErrNoTable) {
			slog.Warn("No register table found; reporting zero records")
			return nil
		}
		return err
	}

	approve := filter.New(filter.Options{
		Enabled:      cfg.Filter.Enabled,
		AllowISINs:   cfg.Filter.AllowISINs,
		AllowIssuers: cfg.Filter.AllowIssuers,
		DenyIssuers:  cfg.Filter.DenyIssuers,
	})

	filings, _ := register.Extract(table, spec, spec.URL, approve)
	reconciled := reconcile.Reconcile(filings)

	seen := store.Load(cfg.Store.Path)
	fresh := make([]domain.ReconciledFiling, 0, len(reconciled))
	for _, rec := range reconciled {
		if seen.Seen(rec.UniqueID) {
			continue
		}
		fresh = append(fresh, rec)
	}
	slog.Info("Deduplicated against seen store",
		slog.Int("reconciled", len(reconciled)),
		slog.Int("fresh", len(fresh)),
		slog.Int("known", seen.Len()))

	meta := article.Meta{PositionNoun: spec.PositionNoun, RegisterName: spec.Name}
	articles := make([]article.Article, 0, len(fresh))
	filingsByID := make(map[string]domain.Filing, len(fresh))
	for _, rec := range fresh {
		if !hasValidPercent(rec.PercentRaw) {
			slog.Info("Skipping record without a valid percentage",
				slog.String("unique_id", rec.UniqueID),
				slog.String("issuer", rec.Issuer))
			continue
		}
		a, err := article.Build(rec, meta)
		if err != nil {
			slog.Error("Failed to build article",
				slog.String("unique_id", rec.UniqueID),
				slog.Any("error", err))
			continue
		}
		articles = append(articles, a)
		filingsByID[rec.UniqueID] = rec.Filing
	}

	if dryRun || !cfg.PublishingConfigured() {
		if !dryRun {
			slog.Warn("WordPress credentials not configured; skipping publish")
		}
		slog.Info("Dry run complete",
			slog.Int("would_publish", min(len(articles), cfg.WordPress.MaxPosts)),
			slog.Int("max", cfg.WordPress.MaxPosts))
		return nil
	}

	publisher, err := publish.New(publish.Options{
		BaseURL:     cfg.WordPress.BaseURL,
		Username:    cfg.WordPress.Username,
		AppPassword: cfg.WordPress.AppPassword,
		CategoryID:  cfg.WordPress.CategoryID,
		Status:      cfg.WordPress.Status,
		MaxPosts:    cfg.WordPress.MaxPosts,
		Delay:       cfg.WordPress.Delay,
		Timeout:     cfg.WordPress.Timeout,
	})
	if err != nil {
		return err
	}

	created, err := publisher.PublishBatch(ctx, articles, func(a article.Article) {
		if f, ok := filingsByID[a.UniqueID]; ok {
			seen.Add(f)
		}
	})
	if saveErr := seen.Save(); saveErr != nil {
		slog.Error("Failed to save seen store", slog.Any("error", saveErr))
	}
	if err != nil {
		return err
	}

	slog.Info("Run complete",
		slog.Int("processed", created),
		slog.Int("max", cfg.WordPress.MaxPosts))
	return nil
}

// loadSpec resolves the register spec from config: an explicit spec file
// wins, then the built-in registers, then URL override on top.
func loadSpec(cfg *config.Config) (register.Spec, error) {
	var spec register.Spec
	var err error
	if cfg.Register.SpecFile != "" {
		spec, err = register.LoadSpecFile(cfg.Register.SpecFile)
	} else {
		spec, err = register.BySlug(cfg.Register.Slug)
	}
	if err != nil {
		return register.Spec{}, err
	}
	if cfg.Register.URL != "" {
		spec.URL = cfg.Register.URL
	}
	return spec, nil
}

// loadDocument fetches the register page, follows its export link when one
// exists, and parses whichever payload it ends up with. The boolean is false
// when the source produced nothing parseable (a soft failure).
func loadDocument(ctx context.Context, client *fetch.Client, spec register.Spec) (register.Document, bool, error) {
	page, err := client.Get(ctx, spec.URL)
	if err != nil {
		if errors.Is(err, fetch.ErrForbidden) {
			slog.Warn("Register page denied access", slog.String("url", spec.URL))
			return register.Document{}, false, nil
		}
		return register.Document{}, false, fmt.Errorf("failed to fetch register page: %w", err)
	}
	html := register.DecodeBytes(page)

	link, found := register.FindExportLink(html, spec.URL)
	if !found {
		slog.Info("No export link found; using page tables")
		doc, err := register.ParseHTML(html)
		if err != nil {
			return register.Document{}, false, err
		}
		return doc, len(doc.Tables) > 0, nil
	}

	slog.Info("Found register export",
		slog.String("url", link.URL),
		slog.String("kind", string(link.Kind)))

	payload, err := client.Get(ctx, link.URL)
	if err != nil {
		if errors.Is(err, fetch.ErrForbidden) {
			slog.Warn("Register export denied access", slog.String("url", link.URL))
			return register.Document{}, false, nil
		}
		return register.Document{}, false, fmt.Errorf("failed to fetch register export: %w", err)
	}

	var doc register.Document
	switch link.Kind {
	case register.ExportXLSX:
		doc, err = register.ParseXLSX(payload)
	default:
		doc, err = register.ParseCSV(register.DecodeBytes(payload))
	}
	if err != nil {
		slog.Warn("Failed to parse register export; reporting zero records",
			slog.Any("error", err))
		return register.Document{}, false, nil
	}
	return doc, len(doc.Tables) > 0, nil
}

// hasValidPercent requires at least one digit in the raw percentage, so
// placeholders like "n.n.b." never reach a title.
func hasValidPercent(raw string) bool {
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
