// Package ingest drives the per-symbol fetch-normalize-store cycle.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"TickerVault/internal/fetcher"
	"TickerVault/internal/model"
	"TickerVault/internal/normalize"
	"TickerVault/internal/store"
)

// Config holds orchestration settings.
type Config struct {
	Pause time.Duration // courtesy delay between slices
}

// Orchestrator fetches, normalizes and stores intraday data one slice at a
// time, strictly sequentially, to respect provider rate limits.
type Orchestrator struct {
	Fetcher fetcher.Fetcher
	Store   *store.Store
	pause   time.Duration
}

// New creates a new Orchestrator.
func New(f fetcher.Fetcher, st *store.Store, cfg Config) *Orchestrator {
	pause := cfg.Pause
	if pause == 0 {
		pause = time.Second
	}
	return &Orchestrator{Fetcher: f, Store: st, pause: pause}
}

// Run ingests the given slices for one symbol. An empty slice set means one
// latest-window fetch. A failure on one slice is logged and the remaining
// slices are still attempted, except the provider-unavailable case, which
// halts the run: nothing downstream can proceed without data.
func (o *Orchestrator) Run(ctx context.Context, symbol string, slices []model.FetchSlice, interval string) error {
	if !fetcher.ValidInterval(interval) {
		return fmt.Errorf("invalid interval %q", interval)
	}
	if len(slices) == 0 {
		slices = []model.FetchSlice{{}}
	}

	for i, slice := range slices {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.pause):
			}
		}

		if err := o.runSlice(ctx, symbol, slice, interval); err != nil {
			if errors.Is(err, fetcher.ErrUnavailable) {
				return fmt.Errorf("ingest %s %s: %w", symbol, slice, err)
			}
			log.Printf("[ERROR] ingest %s %s: %v", symbol, slice, err)
		}
	}
	return nil
}

func (o *Orchestrator) runSlice(ctx context.Context, symbol string, slice model.FetchSlice, interval string) error {
	log.Printf("[INFO] fetching %s %s (%s)", symbol, slice, interval)

	raw, err := o.Fetcher.FetchIntraday(ctx, symbol, interval, slice, fetcher.OutputFull)
	if err != nil {
		return err
	}

	bars, err := normalize.Series(raw, symbol)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if len(bars) == 0 {
		log.Printf("[INFO] %s %s: no data for this slice", symbol, slice)
		return nil
	}

	inserted, err := o.Store.InsertIncremental(symbol, bars)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	log.Printf("[INFO] %s %s: %d fetched, %d inserted", symbol, slice, len(bars), inserted)
	return nil
}
