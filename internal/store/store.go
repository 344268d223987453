package store

import "PricePulse/internal/model"

// RawStore is a fire-and-forget durable log of raw price samples.
type RawStore interface {
	Append(samples []model.Sample) error
	Purge() error
	Close() error
}

// RollupStore persists finalized bucket records, upserting on
// (bucket start, symbol).
type RollupStore interface {
	Insert(records []model.RolloverRecord) error
	Close() error
}
