package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"qabot/internal/chat"
	"qabot/internal/config"
	"qabot/internal/db"
	"qabot/internal/email"
	"qabot/internal/fallback"
	"qabot/internal/jobs"
	"qabot/internal/metrics"
	"qabot/internal/qa"
	"qabot/internal/server"
	"qabot/internal/speller"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	yamlCfg.Apply(cfg)

	if !cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	// Initialize database only when a component is backed by Postgres
	var database *db.DB
	if cfg.NeedsDatabase() {
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL is required when QA_SOURCE or FALLBACK_SINK is postgres")
		}

		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Load the QA store once; it is shared read-only by every request
	source := qaSource(ctx, cfg, database)
	store, err := qa.Load(ctx, source, qa.Options{Threshold: cfg.MatchThreshold})
	if err != nil {
		log.Fatalf("Failed to load QA dataset: %v", err)
	}
	log.Printf("Loaded %d QA records from %s", store.Len(), source.Name())

	corrector := buildCorrector(cfg, yamlCfg, store)

	// Fallback log
	var recorder fallback.Recorder
	switch cfg.FallbackSink {
	case config.SinkPostgres:
		recorder = fallback.NewDBLogger(database)
		log.Println("Unanswered questions are recorded in Postgres")
	default:
		fileLog, err := fallback.OpenFile(cfg.FallbackLogPath)
		if err != nil {
			log.Fatalf("Failed to open fallback log: %v", err)
		}
		defer fileLog.Close()
		recorder = fileLog
		log.Printf("Unanswered questions are recorded in %s", fileLog.Path())
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var counter metrics.UnansweredCounter
	if cfg.FallbackSink == config.SinkPostgres {
		counter = database
	}
	chatMetrics := metrics.New(reg, counter)

	// Unanswered digest
	var jobGroup errgroup.Group
	if cfg.IsDigestEnabled() {
		settings := yamlCfg.DigestSettings()
		digest := jobs.NewDigest(email.NewService(cfg), email.NewTemplates(cfg), jobs.DigestOptions{
			Recipients: cfg.DigestRecipients,
			Subject:    settings.Subject,
			Interval:   cfg.DigestInterval,
			MaxItems:   settings.MaxItems,
		})
		recorder = fallback.Observe(recorder, digest.Add)
		metrics.RegisterDigestPending(reg, digest.Pending)

		jobGroup.Go(func() error {
			digest.Start(ctx)
			return nil
		})
	} else {
		log.Println("Unanswered digest disabled (set SMTP_* and DIGEST_RECIPIENTS to enable)")
	}

	bot := chat.New(store, corrector, recorder, chat.Options{
		FallbackMessage: cfg.FallbackMessage,
		Observer:        chatMetrics,
	})

	srv := server.New(cfg)
	deps := server.Deps{Bot: bot, Store: store, Gatherer: reg}
	if database != nil {
		deps.DB = database
	}
	srv.RegisterRoutes(deps)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cancel()
	if err := jobGroup.Wait(); err != nil {
		log.Printf("Background job error: %v", err)
	}
	log.Println("Server exited")
}

// qaSource picks the dataset backend. With Postgres, an empty table is
// seeded from the CSV dataset when that file exists.
func qaSource(ctx context.Context, cfg *config.Config, database *db.DB) qa.Source {
	csvSource := qa.CSVSource{Path: cfg.QADatasetPath}
	if cfg.QASource != config.SourcePostgres {
		return csvSource
	}

	existing, err := database.CountQARecords(ctx)
	if err != nil {
		log.Fatalf("Failed to count qa_records: %v", err)
	}
	if existing > 0 {
		log.Printf("qa_records holds %d records, skipping seed", existing)
		return qa.TableSource{DB: database}
	}

	if _, err := os.Stat(cfg.QADatasetPath); err == nil {
		records, err := csvSource.Records(ctx)
		if err != nil {
			log.Fatalf("Failed to read seed dataset: %v", err)
		}
		// Blank questions are skipped by the store anyway; the table rejects them.
		usable := records[:0]
		for _, r := range records {
			if strings.TrimSpace(r.Question) != "" {
				usable = append(usable, r)
			}
		}
		n, err := database.SeedQARecords(ctx, usable)
		switch {
		case errors.Is(err, db.ErrTableNotEmpty):
			log.Println("qa_records already populated, skipping seed")
		case err != nil:
			log.Fatalf("Failed to seed qa_records: %v", err)
		default:
			log.Printf("Seeded %d QA records from %s", n, cfg.QADatasetPath)
		}
	}

	return qa.TableSource{DB: database}
}

// buildCorrector trains the speller on the store vocabulary plus any extra
// words from the config file and dictionary.
func buildCorrector(cfg *config.Config, yamlCfg *config.YAMLConfig, store *qa.Store) speller.Corrector {
	if !cfg.SpellcheckEnabled {
		log.Println("Spell correction disabled")
		return speller.Nop{}
	}

	settings := yamlCfg.SpellerSettings()
	words := append(store.Vocabulary(), settings.Vocabulary...)

	if cfg.SpellDictionaryPath != "" {
		extra, err := speller.LoadDictionary(cfg.SpellDictionaryPath)
		if err != nil {
			log.Fatalf("Failed to load spell dictionary: %v", err)
		}
		words = append(words, extra...)
	}

	sp := speller.New(words, speller.Options{
		MinWordLength: settings.MinWordLength,
		MaxWordLength: settings.MaxWordLength,
		Depth:         settings.Depth,
	})
	log.Printf("Spell correction enabled (%d known words)", sp.Known())
	return sp
}
