package collector

import (
	"fmt"
	"time"

	"PricePulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Prices map[string]float64
	Errs   map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrice(symbol string) (float64, error) {
	if err, ok := m.Errs[symbol]; ok {
		return 0, err
	}
	if p, ok := m.Prices[symbol]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("mock: no price for %s", symbol)
}

// Result is the outcome of one symbol's fetch within a poll tick.
// Exactly one of Sample and Err is meaningful.
type Result struct {
	Symbol string
	Sample model.Sample
	Err    error
}

// Collector fetches the current price of every tracked symbol once per
// poll tick.
type Collector struct {
	Fetcher Fetcher
	Symbols []string
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbols []string) *Collector {
	return &Collector{Fetcher: fetcher, Symbols: symbols, Now: time.Now}
}

// Collect fetches one price per tracked symbol, stamping each with the
// fetch time. A failed fetch for one symbol never blocks the others;
// the error is carried in that symbol's Result.
func (c *Collector) Collect() []Result {
	results := make([]Result, 0, len(c.Symbols))
	for _, sym := range c.Symbols {
		price, err := c.Fetcher.FetchPrice(sym)
		if err != nil {
			results = append(results, Result{Symbol: sym, Err: fmt.Errorf("fetch %s: %w", sym, err)})
			continue
		}
		results = append(results, Result{
			Symbol: sym,
			Sample: model.Sample{Symbol: sym, Price: price, Timestamp: c.Now()},
		})
	}
	return results
}
