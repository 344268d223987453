package store

import "PricePulse/internal/model"

// NoopRawStore is a no-op implementation used when SQLite is not configured.
type NoopRawStore struct{}

func NewNoopRawStore() *NoopRawStore { return &NoopRawStore{} }

func (n *NoopRawStore) Append(_ []model.Sample) error { return nil }
func (n *NoopRawStore) Purge() error                  { return nil }
func (n *NoopRawStore) Close() error                  { return nil }

// NoopRollupStore is a no-op implementation used when Postgres is not configured.
type NoopRollupStore struct{}

func NewNoopRollupStore() *NoopRollupStore { return &NoopRollupStore{} }

func (n *NoopRollupStore) Insert(_ []model.RolloverRecord) error { return nil }
func (n *NoopRollupStore) Close() error                          { return nil }
