package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"go-cultivation/entities"
)

// Ledger records completed trades for auditing. It is written after the
// marketplace transaction commits and never participates in it.
type Ledger interface {
	RecordTrade(ctx context.Context, t entities.Trade) error
	Close() error
}

type NopLedger struct{}

func (NopLedger) RecordTrade(context.Context, entities.Trade) error { return nil }
func (NopLedger) Close() error                                       { return nil }

const createTradesTable = `CREATE TABLE IF NOT EXISTS market_trades (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	listing_id VARCHAR(64) NOT NULL,
	buyer_id VARCHAR(64) NOT NULL,
	seller_id VARCHAR(64) NOT NULL,
	item_id VARCHAR(128) NOT NULL,
	quantity INT NOT NULL,
	price_per_item INT NOT NULL,
	traded_at DATETIME(3) NOT NULL,
	INDEX idx_listing (listing_id)
)`

type MySQLLedger struct {
	db *sql.DB
}

// OpenMySQLLedger connects, pings and makes sure the table exists.
func OpenMySQLLedger(ctx context.Context, dsn string) (*MySQLLedger, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTradesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create market_trades: %w", err)
	}
	return &MySQLLedger{db: db}, nil
}

func (l *MySQLLedger) RecordTrade(ctx context.Context, t entities.Trade) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO market_trades (listing_id, buyer_id, seller_id, item_id, quantity, price_per_item, traded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ListingID, t.BuyerID, t.SellerID, t.ItemID, t.Quantity, t.PricePerItem, t.TradedAt.UTC())
	if err != nil {
		return fmt.Errorf("record trade %s: %w", t.ListingID, err)
	}
	return nil
}

func (l *MySQLLedger) Close() error { return l.db.Close() }
