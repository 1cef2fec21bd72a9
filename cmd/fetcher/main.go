package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"TickerVault/internal/config"
	"TickerVault/internal/fetcher"
	"TickerVault/internal/ingest"
	"TickerVault/internal/model"
	"TickerVault/internal/scheduler"
	"TickerVault/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	symbolFlag := flag.String("symbol", "", "ticker symbol (all configured symbols if omitted)")
	yearFlag := flag.String("year", "", "backfill a whole year (YYYY)")
	monthFlag := flag.String("month", "", "backfill a single month (YYYY-MM)")
	intervalFlag := flag.String("interval", "", "bar interval: 1min, 5min, 15min, 30min or 60min")
	daemonFlag := flag.Bool("daemon", false, "run scheduled updates instead of a single pass")
	flag.Parse()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	interval := cfg.Interval
	if *intervalFlag != "" {
		interval = *intervalFlag
	}
	if !fetcher.ValidInterval(interval) {
		log.Fatalf("[FATAL] invalid interval %q", interval)
	}
	if *yearFlag != "" && *monthFlag != "" {
		log.Fatal("[FATAL] --year and --month are mutually exclusive")
	}

	// Which slices to ingest. Omitting both --year and --month means one
	// latest-window fetch per symbol.
	var slices []model.FetchSlice
	now := time.Now().UTC()
	if *yearFlag != "" {
		if slices, err = ingest.SlicesForYear(*yearFlag, now); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
	} else if *monthFlag != "" {
		slice, err := ingest.SliceForMonth(*monthFlag, now)
		if err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		slices = []model.FetchSlice{slice}
	}

	symbols := cfg.Symbols
	if *symbolFlag != "" {
		symbols = []string{strings.ToUpper(*symbolFlag)}
	}
	if len(symbols) == 0 {
		log.Fatal("[FATAL] no symbols: pass --symbol or configure a symbol list")
	}

	f := fetcher.NewAlphaFetcher(fetcher.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		Retries: cfg.Provider.Retries,
		Backoff: cfg.Provider.Backoff,
	})
	st := store.New(store.Config{Dir: cfg.Database.Dir, Table: cfg.Database.Table})
	orch := ingest.New(f, st, ingest.Config{Pause: time.Duration(cfg.Ingest.PauseSeconds) * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *daemonFlag {
		runDaemon(ctx, cancel, orch, cfg, symbols, interval)
		return
	}

	for _, symbol := range symbols {
		if err := orch.Run(ctx, symbol, slices, interval); err != nil {
			log.Fatalf("[FATAL] ingestion aborted: %v", err)
		}
	}
	log.Println("[INFO] ingestion finished")
}

func runDaemon(ctx context.Context, cancel context.CancelFunc, orch *ingest.Orchestrator, cfg *config.Config, symbols []string, interval string) {
	sched := scheduler.NewScheduler(ctx, orch, symbols, interval)
	if err := sched.Register(cfg.Schedule.UpdateCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing update now")
		go sched.RunNow()
	}

	log.Printf("[INFO] fetcher daemon running (cron %q). Press Ctrl+C to stop.", cfg.Schedule.UpdateCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
}
