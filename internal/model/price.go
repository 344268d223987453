package model

import "time"

// Sample is one observed price for a tracked symbol.
type Sample struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// RolloverRecord is the finalized OHLC/average summary of one symbol
// over one completed bucket.
type RolloverRecord struct {
	BucketStart time.Time
	Symbol      string
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Average     float64
	SampleCount int
}
