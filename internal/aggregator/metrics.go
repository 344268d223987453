package aggregator

import "time"

// RunningMetrics accumulates OHLC and average statistics for one symbol
// within the current bucket. SampleCount == 0 is the empty state; the
// price fields carry no meaning until the first sample arrives.
type RunningMetrics struct {
	Open            float64
	High            float64
	Low             float64
	Latest          float64
	LatestTimestamp time.Time
	Average         float64
	SampleCount     int
}

func (m *RunningMetrics) observe(price float64, ts time.Time) {
	if m.SampleCount == 0 {
		m.Open = price
		m.High = price
		m.Low = price
	} else {
		if price > m.High {
			m.High = price
		}
		if price < m.Low {
			m.Low = price
		}
	}
	m.Latest = price
	m.LatestTimestamp = ts

	// Incremental mean: equivalent to sum/count but avoids an unbounded
	// running sum over long buckets.
	m.SampleCount++
	m.Average += (price - m.Average) / float64(m.SampleCount)
}

func (m *RunningMetrics) reset() {
	*m = RunningMetrics{}
}
