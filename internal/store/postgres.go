package store

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PricePulse/internal/model"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"
)

// PostgresOption defines connection options for the rollup database.
type PostgresOption struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (opt PostgresOption) dsn() string {
	host := opt.Host
	if host == "" {
		host = defaultPostgresHost
	}
	port := opt.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = defaultPostgresSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}
	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()

	return u.String()
}

// downsampledPrice maps a RolloverRecord onto the rollup table.
type downsampledPrice struct {
	BucketStart time.Time `gorm:"column:bucket_start;primaryKey"`
	Symbol      string    `gorm:"column:symbol;primaryKey"`
	OpenPrice   float64   `gorm:"column:open_price"`
	HighPrice   float64   `gorm:"column:high_price"`
	LowPrice    float64   `gorm:"column:low_price"`
	ClosePrice  float64   `gorm:"column:close_price"`
	AvgPrice    float64   `gorm:"column:avg_price"`
	SampleCount int       `gorm:"column:sample_count"`
}

func (downsampledPrice) TableName() string { return "downsampled_prices" }

// PostgresRollupStore persists finalized bucket records to PostgreSQL.
type PostgresRollupStore struct {
	db *gorm.DB
}

// NewPostgresRollupStore connects to Postgres and migrates the rollup table.
func NewPostgresRollupStore(opt PostgresOption) (*PostgresRollupStore, error) {
	db, err := gorm.Open(postgres.Open(opt.dsn()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&downsampledPrice{}); err != nil {
		return nil, fmt.Errorf("migrate rollup table: %w", err)
	}

	log.Printf("[INFO] postgres rollup store opened: %s", opt.Database)
	return &PostgresRollupStore{db: db}, nil
}

// Insert upserts records keyed by (bucket_start, symbol), so replaying
// a rollover overwrites rather than duplicates.
func (s *PostgresRollupStore) Insert(records []model.RolloverRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]downsampledPrice, len(records))
	for i, r := range records {
		rows[i] = downsampledPrice{
			BucketStart: r.BucketStart,
			Symbol:      r.Symbol,
			OpenPrice:   r.Open,
			HighPrice:   r.High,
			LowPrice:    r.Low,
			ClosePrice:  r.Close,
			AvgPrice:    r.Average,
			SampleCount: r.SampleCount,
		}
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket_start"}, {Name: "symbol"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("insert rollups: %w", err)
	}
	return nil
}

func (s *PostgresRollupStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	log.Println("[INFO] closing postgres rollup store")
	return sqlDB.Close()
}
