package aggregator

import (
	"errors"
	"math"
	"testing"
	"time"

	"PricePulse/internal/model"
)

var baseTime = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func ingestAll(t *testing.T, e *Engine, symbol string, prices []float64) {
	t.Helper()
	for i, p := range prices {
		s := model.Sample{
			Symbol:    symbol,
			Price:     p,
			Timestamp: baseTime.Add(time.Duration(i) * 5 * time.Second),
		}
		if err := e.Ingest(s); err != nil {
			t.Fatalf("ingest %s price %v: %v", symbol, p, err)
		}
	}
}

func TestIngest_FirstSample(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT"})
	ts := baseTime
	if err := e.Ingest(model.Sample{Symbol: "BTCUSDT", Price: 42000, Timestamp: ts}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	m, ok := e.Snapshot("BTCUSDT")
	if !ok {
		t.Fatal("expected snapshot for tracked symbol")
	}
	if m.Open != 42000 || m.High != 42000 || m.Low != 42000 || m.Latest != 42000 {
		t.Errorf("expected all prices 42000, got open=%v high=%v low=%v latest=%v",
			m.Open, m.High, m.Low, m.Latest)
	}
	if m.Average != 42000 {
		t.Errorf("expected average 42000, got %v", m.Average)
	}
	if m.SampleCount != 1 {
		t.Errorf("expected count 1, got %d", m.SampleCount)
	}
	if !m.LatestTimestamp.Equal(ts) {
		t.Errorf("expected latest timestamp %v, got %v", ts, m.LatestTimestamp)
	}
}

func TestIngest_MonotoneBounds(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT"})
	prices := []float64{100, 130, 95, 120, 80, 80.5, 200}
	for i, p := range prices {
		if err := e.Ingest(model.Sample{Symbol: "BTCUSDT", Price: p, Timestamp: baseTime.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("ingest: %v", err)
		}
		m, _ := e.Snapshot("BTCUSDT")
		for _, q := range prices[:i+1] {
			if q < m.Low || q > m.High {
				t.Errorf("after %d ingests: price %v outside [%v, %v]", i+1, q, m.Low, m.High)
			}
		}
	}
}

func TestIngest_AverageMatchesSum(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT"})
	prices := []float64{42137.19, 41950.01, 42088.88, 42300.42, 41999.99, 42001.03}
	ingestAll(t, e, "BTCUSDT", prices)

	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	want := sum / float64(len(prices))

	m, _ := e.Snapshot("BTCUSDT")
	if rel := math.Abs(m.Average-want) / want; rel > 1e-9 {
		t.Errorf("average %v differs from %v by relative error %v", m.Average, want, rel)
	}
}

func TestIngest_OpenInvariance(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT"})
	ingestAll(t, e, "BTCUSDT", []float64{100, 5000, 0.5, 77, 100})

	m, _ := e.Snapshot("BTCUSDT")
	if m.Open != 100 {
		t.Errorf("expected open to stay at first price 100, got %v", m.Open)
	}
}

func TestIngest_UnknownSymbol(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT"})
	err := e.Ingest(model.Sample{Symbol: "DOGEUSDT", Price: 1, Timestamp: baseTime})
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestIngest_InvalidPriceRejectedWithoutMutation(t *testing.T) {
	tests := []struct {
		name  string
		price float64
	}{
		{"zero", 0},
		{"negative", -42},
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine([]string{"BTCUSDT"})
			ingestAll(t, e, "BTCUSDT", []float64{100})

			err := e.Ingest(model.Sample{Symbol: "BTCUSDT", Price: tt.price, Timestamp: baseTime})
			if !errors.Is(err, ErrInvalidSample) {
				t.Fatalf("expected ErrInvalidSample, got %v", err)
			}

			m, _ := e.Snapshot("BTCUSDT")
			if m.SampleCount != 1 || m.Open != 100 || m.High != 100 || m.Low != 100 || m.Latest != 100 || m.Average != 100 {
				t.Errorf("metrics mutated by rejected sample: %+v", m)
			}
		})
	}
}

func TestRollover_EndToEnd(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT", "ETHUSDT"})
	ingestAll(t, e, "BTCUSDT", []float64{100, 110, 90})
	ingestAll(t, e, "ETHUSDT", []float64{50})

	bucketStart := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	records := e.Rollover(bucketStart)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	btc := records[0]
	if btc.Symbol != "BTCUSDT" {
		t.Fatalf("expected BTCUSDT first (tracked order), got %s", btc.Symbol)
	}
	if btc.Open != 100 || btc.High != 110 || btc.Low != 90 || btc.Close != 90 {
		t.Errorf("BTCUSDT OHLC wrong: %+v", btc)
	}
	if btc.Average != 100.0 {
		t.Errorf("expected BTCUSDT average 100.0, got %v", btc.Average)
	}
	if btc.SampleCount != 3 {
		t.Errorf("expected BTCUSDT count 3, got %d", btc.SampleCount)
	}
	if !btc.BucketStart.Equal(bucketStart) {
		t.Errorf("expected bucket start %v, got %v", bucketStart, btc.BucketStart)
	}

	eth := records[1]
	if eth.Symbol != "ETHUSDT" {
		t.Fatalf("expected ETHUSDT second, got %s", eth.Symbol)
	}
	if eth.Open != 50 || eth.High != 50 || eth.Low != 50 || eth.Close != 50 || eth.Average != 50 {
		t.Errorf("ETHUSDT OHLC wrong: %+v", eth)
	}
	if eth.SampleCount != 1 {
		t.Errorf("expected ETHUSDT count 1, got %d", eth.SampleCount)
	}

	// No intervening ingests: the second rollover has nothing to emit.
	if again := e.Rollover(bucketStart.Add(time.Hour)); len(again) != 0 {
		t.Errorf("expected empty second rollover, got %d records", len(again))
	}
}

func TestRollover_ResetsToEmptyState(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT"})
	ingestAll(t, e, "BTCUSDT", []float64{100, 110})
	e.Rollover(baseTime)

	m, _ := e.Snapshot("BTCUSDT")
	if m != (RunningMetrics{}) {
		t.Errorf("expected empty metrics after rollover, got %+v", m)
	}
}

func TestRollover_SkipsSymbolsWithoutSamples(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT", "ETHUSDT", "LTCBTC"})
	ingestAll(t, e, "ETHUSDT", []float64{50, 51})

	records := e.Rollover(baseTime)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Symbol != "ETHUSDT" {
		t.Errorf("expected ETHUSDT, got %s", records[0].Symbol)
	}
}

func TestRollover_StableOrderAcrossBuckets(t *testing.T) {
	e := NewEngine([]string{"BTCUSDT", "ETHUSDT", "LTCBTC"})
	for bucket := 0; bucket < 3; bucket++ {
		ingestAll(t, e, "LTCBTC", []float64{0.005})
		ingestAll(t, e, "BTCUSDT", []float64{100})
		ingestAll(t, e, "ETHUSDT", []float64{50})

		records := e.Rollover(baseTime.Add(time.Duration(bucket) * time.Hour))
		want := []string{"BTCUSDT", "ETHUSDT", "LTCBTC"}
		if len(records) != len(want) {
			t.Fatalf("bucket %d: expected %d records, got %d", bucket, len(want), len(records))
		}
		for i, sym := range want {
			if records[i].Symbol != sym {
				t.Errorf("bucket %d: expected %s at position %d, got %s", bucket, sym, i, records[i].Symbol)
			}
		}
	}
}
