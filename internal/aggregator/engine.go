package aggregator

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"PricePulse/internal/model"
)

var (
	// ErrUnknownSymbol indicates a sample for a symbol the engine does not track.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrInvalidSample indicates a sample whose price cannot be aggregated.
	ErrInvalidSample = errors.New("invalid sample")
)

// Engine owns the per-symbol running metrics for the current bucket.
// A single mutex guards the whole symbol map, so Ingest and Rollover
// never interleave.
type Engine struct {
	mu      sync.Mutex
	symbols []string
	metrics map[string]*RunningMetrics
}

// NewEngine creates an Engine tracking exactly the given symbols, all
// starting empty. Rollover emits records in the order symbols are
// listed here.
func NewEngine(symbols []string) *Engine {
	e := &Engine{
		symbols: append([]string(nil), symbols...),
		metrics: make(map[string]*RunningMetrics, len(symbols)),
	}
	for _, sym := range e.symbols {
		e.metrics[sym] = &RunningMetrics{}
	}
	return e
}

// Ingest folds one sample into its symbol's running metrics.
// Validation happens before any mutation: a rejected sample leaves the
// metrics untouched.
func (e *Engine) Ingest(s model.Sample) error {
	if s.Price <= 0 || math.IsInf(s.Price, 0) || math.IsNaN(s.Price) {
		return fmt.Errorf("%w: price %v for %s", ErrInvalidSample, s.Price, s.Symbol)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.metrics[s.Symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, s.Symbol)
	}
	m.observe(s.Price, s.Timestamp)
	return nil
}

// Rollover finalizes the completed bucket: it emits one record per
// symbol that received samples, with the latest price as close, then
// resets that symbol's metrics. Symbols with no samples produce no
// record, so calling Rollover again without intervening ingests
// returns nothing.
func (e *Engine) Rollover(bucketStart time.Time) []model.RolloverRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	var records []model.RolloverRecord
	for _, sym := range e.symbols {
		m := e.metrics[sym]
		if m.SampleCount == 0 {
			continue
		}
		records = append(records, model.RolloverRecord{
			BucketStart: bucketStart,
			Symbol:      sym,
			Open:        m.Open,
			High:        m.High,
			Low:         m.Low,
			Close:       m.Latest,
			Average:     m.Average,
			SampleCount: m.SampleCount,
		})
		m.reset()
	}
	return records
}

// Snapshot returns a copy of one symbol's current running metrics, for
// status logging. The second return is false for untracked symbols.
func (e *Engine) Snapshot(symbol string) (RunningMetrics, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.metrics[symbol]
	if !ok {
		return RunningMetrics{}, false
	}
	return *m, true
}

// Symbols returns the tracked symbols in rollover order.
func (e *Engine) Symbols() []string {
	return append([]string(nil), e.symbols...)
}
