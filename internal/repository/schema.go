package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Amounts and token ids are NUMERIC(20, 0) so the full uint64 range fits.
func InitializeDBSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS events (
	event_id VARCHAR(64) PRIMARY KEY,
	organizer VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	symbol VARCHAR(32) NOT NULL DEFAULT '',
	event_date TIMESTAMP WITH TIME ZONE NOT NULL,
	base_price NUMERIC(20, 0) NOT NULL,
	max_price_multiplier_bps NUMERIC(20, 0) NOT NULL,
	min_hold_period_ns BIGINT NOT NULL,
	max_transfers BIGINT NOT NULL,
	royalty_bps NUMERIC(20, 0) NOT NULL,
	total_issued NUMERIC(20, 0) NOT NULL DEFAULT 0,
	proceeds NUMERIC(20, 0) NOT NULL DEFAULT 0,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);`)
	if err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS tickets (
	event_id VARCHAR(64) NOT NULL REFERENCES events (event_id),
	token_id NUMERIC(20, 0) NOT NULL,
	original_price NUMERIC(20, 0) NOT NULL,
	last_purchase_at TIMESTAMP WITH TIME ZONE NOT NULL,
	transfer_count BIGINT NOT NULL,
	seat_info VARCHAR(255) NOT NULL DEFAULT '',
	owner VARCHAR(255) NOT NULL,
	redeemed BOOLEAN NOT NULL DEFAULT FALSE,
	redeemed_at TIMESTAMP WITH TIME ZONE,
	PRIMARY KEY (event_id, token_id)
);`)
	if err != nil {
		return fmt.Errorf("failed to create tickets table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS listings (
	event_id VARCHAR(64) NOT NULL,
	token_id NUMERIC(20, 0) NOT NULL,
	listing_id UUID NOT NULL,
	seller VARCHAR(255) NOT NULL,
	price NUMERIC(20, 0) NOT NULL,
	active BOOLEAN NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	PRIMARY KEY (event_id, token_id),
	FOREIGN KEY (event_id, token_id) REFERENCES tickets (event_id, token_id)
);`)
	if err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS domain_events (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMP WITH TIME ZONE NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create domain_events table: %w", err)
	}

	return nil
}
