// Package migrations applies the bridge database schema. Statements are
// idempotent so Apply can run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS bridge_state (
		id                  INTEGER PRIMARY KEY,
		owner               TEXT NOT NULL,
		treasury            TEXT NOT NULL,
		validator_threshold BIGINT NOT NULL,
		total_validators    BIGINT NOT NULL,
		challenge_period    BIGINT NOT NULL,
		min_lock_amount     BIGINT NOT NULL,
		bridge_fee_bps      BIGINT NOT NULL,
		total_locked        BIGINT NOT NULL,
		total_bridged       BIGINT NOT NULL,
		paused              BOOLEAN NOT NULL,
		nonce               BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bridge_transfers (
		id            BIGINT PRIMARY KEY,
		sender        TEXT NOT NULL,
		recipient     TEXT NOT NULL,
		amount        BIGINT NOT NULL,
		fee           BIGINT NOT NULL,
		target_chain  TEXT NOT NULL,
		created_at    BIGINT NOT NULL,
		status        TEXT NOT NULL,
		challenge_end BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bridge_transfers_status ON bridge_transfers (status)`,
	`CREATE INDEX IF NOT EXISTS idx_bridge_transfers_sender ON bridge_transfers (sender)`,
	`CREATE TABLE IF NOT EXISTS bridge_claims (
		external_tx_id TEXT PRIMARY KEY,
		recipient      TEXT NOT NULL,
		amount         BIGINT NOT NULL,
		source_chain   TEXT NOT NULL,
		claimed        BOOLEAN NOT NULL,
		signatures     JSONB,
		executed_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bridge_validators (
		account         TEXT PRIMARY KEY,
		active          BOOLEAN NOT NULL,
		added_at        BIGINT NOT NULL,
		total_validated BIGINT NOT NULL,
		slash_count     BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bridge_fraud_proofs (
		id           BIGINT PRIMARY KEY,
		challenger   TEXT NOT NULL,
		transfer_id  BIGINT NOT NULL,
		evidence     TEXT NOT NULL,
		submitted_at BIGINT NOT NULL,
		status       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bridge_fraud_proofs_transfer ON bridge_fraud_proofs (transfer_id)`,
	`CREATE TABLE IF NOT EXISTS bridge_chains (
		chain_id       TEXT PRIMARY KEY,
		enabled        BOOLEAN NOT NULL,
		fee_multiplier BIGINT NOT NULL,
		total_volume   BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bridge_deposits (
		account TEXT PRIMARY KEY,
		balance BIGINT NOT NULL
	)`,
}

// Apply runs every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}
