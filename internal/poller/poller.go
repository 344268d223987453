package poller

import (
	"context"
	"errors"
	"log"
	"time"

	"PricePulse/internal/aggregator"
	"PricePulse/internal/bucket"
	"PricePulse/internal/collector"
	"PricePulse/internal/model"
	"PricePulse/internal/store"
)

// statusEvery is the number of ticks between running-metrics status logs.
const statusEvery = 12

// Poller drives the fetch → ingest → rollover cycle at a fixed interval.
type Poller struct {
	Collector *collector.Collector
	Engine    *aggregator.Engine
	Clock     *bucket.Clock
	Raw       store.RawStore
	Rollups   store.RollupStore
	Interval  time.Duration

	lastTick  time.Time
	tickCount int
}

// New creates a new Poller.
func New(col *collector.Collector, eng *aggregator.Engine, clk *bucket.Clock, raw store.RawStore, rollups store.RollupStore, interval time.Duration) *Poller {
	return &Poller{
		Collector: col,
		Engine:    eng,
		Clock:     clk,
		Raw:       raw,
		Rollups:   rollups,
		Interval:  interval,
	}
}

// Run polls until ctx is cancelled. The first tick fires immediately.
// A tracking-set mismatch between collector and engine aborts the loop:
// that is a wiring bug, not a transient condition.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	log.Printf("[INFO] poller started: interval=%s bucket=%s", p.Interval, p.Clock.Size())

	if err := p.tick(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] poller stopped")
			return nil
		case now := <-ticker.C:
			if err := p.tick(now); err != nil {
				return err
			}
		}
	}
}

// tick runs one poll cycle at the given instant. The completed bucket
// is rolled over before ingesting, so this tick's samples land in the
// new bucket.
func (p *Poller) tick(now time.Time) error {
	if !p.lastTick.IsZero() && p.Clock.HasCrossed(p.lastTick, now) {
		p.rollover(p.Clock.Completed(p.lastTick))
	}
	p.lastTick = now

	results := p.Collector.Collect()
	samples := make([]model.Sample, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			log.Printf("[WARN] %v", res.Err)
			continue
		}
		if err := p.Engine.Ingest(res.Sample); err != nil {
			if errors.Is(err, aggregator.ErrUnknownSymbol) {
				return err
			}
			log.Printf("[WARN] ingest: %v", err)
			continue
		}
		samples = append(samples, res.Sample)
		log.Printf("[INFO] %s: $%.2f at %s", res.Sample.Symbol, res.Sample.Price,
			res.Sample.Timestamp.Format(time.RFC3339))
	}

	if err := p.Raw.Append(samples); err != nil {
		log.Printf("[ERROR] append raw samples: %v", err)
	}

	p.tickCount++
	if p.tickCount%statusEvery == 0 {
		p.logStatus()
	}
	return nil
}

func (p *Poller) rollover(bucketStart time.Time) {
	records := p.Engine.Rollover(bucketStart)
	if len(records) == 0 {
		log.Printf("[INFO] bucket %s closed with no samples", bucketStart.Format(time.RFC3339))
		return
	}
	if err := p.Rollups.Insert(records); err != nil {
		log.Printf("[ERROR] store rollups for bucket %s: %v", bucketStart.Format(time.RFC3339), err)
		return
	}
	log.Printf("[INFO] stored %d rollup records for bucket %s", len(records), bucketStart.Format(time.RFC3339))
}

func (p *Poller) logStatus() {
	for _, sym := range p.Engine.Symbols() {
		m, ok := p.Engine.Snapshot(sym)
		if !ok || m.SampleCount == 0 {
			continue
		}
		log.Printf("[INFO] %s: latest=$%.2f high=$%.2f low=$%.2f avg=$%.2f samples=%d",
			sym, m.Latest, m.High, m.Low, m.Average, m.SampleCount)
	}
}
