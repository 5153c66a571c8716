package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the rentledger store.
var Migrations = migrate.NewGroup("rentledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_rentledger_tenancies",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_tenancies (
    id                 TEXT PRIMARY KEY,
    landlord_id        TEXT NOT NULL DEFAULT '',
    tenant_name        TEXT NOT NULL DEFAULT '',
    tenant_phone       TEXT NOT NULL DEFAULT '',
    unit_label         TEXT NOT NULL DEFAULT '',
    house_type         TEXT NOT NULL DEFAULT '',
    base_rent_cents    INTEGER NOT NULL DEFAULT 0,
    base_rent_currency TEXT NOT NULL DEFAULT '',
    utility_rates      TEXT NOT NULL DEFAULT '{}',
    lease_start        TEXT NOT NULL DEFAULT (datetime('now')),
    status             TEXT NOT NULL DEFAULT 'active',
    ended_at           TEXT,
    metadata           TEXT NOT NULL DEFAULT '{}',
    created_at         TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at         TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_rentledger_tenancies_landlord ON rentledger_tenancies (landlord_id);
CREATE INDEX IF NOT EXISTS idx_rentledger_tenancies_status ON rentledger_tenancies (landlord_id, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_tenancies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rentledger_bills",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_bills (
    id                   TEXT PRIMARY KEY,
    tenancy_id           TEXT NOT NULL DEFAULT '',
    landlord_id          TEXT NOT NULL DEFAULT '',
    for_month            INTEGER NOT NULL DEFAULT 0,
    for_year             INTEGER NOT NULL DEFAULT 0,
    base_rent_cents      INTEGER NOT NULL DEFAULT 0,
    base_rent_currency   TEXT NOT NULL DEFAULT '',
    charges              TEXT NOT NULL DEFAULT '[]',
    total_due_cents      INTEGER NOT NULL DEFAULT 0,
    total_due_currency   TEXT NOT NULL DEFAULT '',
    amount_paid_cents    INTEGER NOT NULL DEFAULT 0,
    amount_paid_currency TEXT NOT NULL DEFAULT '',
    status               TEXT NOT NULL DEFAULT 'pending',
    due_date             TEXT NOT NULL DEFAULT (datetime('now')),
    version              INTEGER NOT NULL DEFAULT 0,
    metadata             TEXT NOT NULL DEFAULT '{}',
    created_at           TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at           TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_rentledger_bills_period ON rentledger_bills (tenancy_id, for_year, for_month);
CREATE INDEX IF NOT EXISTS idx_rentledger_bills_status ON rentledger_bills (tenancy_id, status);
CREATE INDEX IF NOT EXISTS idx_rentledger_bills_landlord ON rentledger_bills (landlord_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_bills`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rentledger_payments",
			Version: "20260101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_payments (
    id                    TEXT PRIMARY KEY,
    tenancy_id            TEXT NOT NULL DEFAULT '',
    landlord_id           TEXT NOT NULL DEFAULT '',
    amount_cents          INTEGER NOT NULL DEFAULT 0,
    amount_currency       TEXT NOT NULL DEFAULT '',
    method                TEXT NOT NULL DEFAULT '',
    source_transaction_id TEXT NOT NULL DEFAULT '',
    allocations           TEXT NOT NULL DEFAULT '[]',
    advance_cents         INTEGER NOT NULL DEFAULT 0,
    advance_currency      TEXT NOT NULL DEFAULT '',
    received_at           TEXT NOT NULL DEFAULT (datetime('now')),
    metadata              TEXT NOT NULL DEFAULT '{}',
    created_at            TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at            TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_rentledger_payments_tenancy ON rentledger_payments (tenancy_id, received_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_rentledger_payments_source ON rentledger_payments (source_transaction_id) WHERE source_transaction_id != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_payments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rentledger_credits",
			Version: "20260101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_credits (
    id              TEXT PRIMARY KEY,
    tenancy_id      TEXT NOT NULL DEFAULT '',
    payment_id      TEXT NOT NULL DEFAULT '',
    amount_cents    INTEGER NOT NULL DEFAULT 0,
    amount_currency TEXT NOT NULL DEFAULT '',
    months          INTEGER NOT NULL DEFAULT 0,
    days            INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_rentledger_credits_tenancy ON rentledger_credits (tenancy_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_credits`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rentledger_readings",
			Version: "20260101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_readings (
    id              TEXT PRIMARY KEY,
    tenancy_id      TEXT NOT NULL DEFAULT '',
    landlord_id     TEXT NOT NULL DEFAULT '',
    utility_type    TEXT NOT NULL DEFAULT '',
    units           INTEGER NOT NULL DEFAULT 0,
    timestamp       TEXT NOT NULL DEFAULT (datetime('now')),
    idempotency_key TEXT NOT NULL DEFAULT '',
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_rentledger_readings_tenancy ON rentledger_readings (tenancy_id, utility_type, timestamp);
CREATE INDEX IF NOT EXISTS idx_rentledger_readings_timestamp ON rentledger_readings (timestamp);
CREATE UNIQUE INDEX IF NOT EXISTS idx_rentledger_readings_idempotency ON rentledger_readings (idempotency_key) WHERE idempotency_key != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_readings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rentledger_cycle_cache",
			Version: "20260101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_cycle_cache (
    tenancy_id        TEXT PRIMARY KEY,
    rent_status       TEXT NOT NULL DEFAULT '',
    next_due_date     TEXT NOT NULL DEFAULT (datetime('now')),
    days_remaining    INTEGER NOT NULL DEFAULT 0,
    debt_cents        INTEGER NOT NULL DEFAULT 0,
    debt_currency     TEXT NOT NULL DEFAULT '',
    months_owed       INTEGER NOT NULL DEFAULT 0,
    advance_months    INTEGER NOT NULL DEFAULT 0,
    advance_days      INTEGER NOT NULL DEFAULT 0,
    last_payment_date TEXT,
    resolved_at       TEXT NOT NULL DEFAULT (datetime('now')),
    expires_at        TEXT NOT NULL,
    created_at        TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_rentledger_cycle_cache_expires ON rentledger_cycle_cache (expires_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_cycle_cache`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rentledger_imports",
			Version: "20260101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_imports (
    id           TEXT PRIMARY KEY,
    landlord_id  TEXT NOT NULL DEFAULT '',
    period_start TEXT NOT NULL DEFAULT (datetime('now')),
    period_end   TEXT NOT NULL DEFAULT (datetime('now')),
    total        INTEGER NOT NULL DEFAULT 0,
    matched      INTEGER NOT NULL DEFAULT 0,
    ambiguous    INTEGER NOT NULL DEFAULT 0,
    no_match     INTEGER NOT NULL DEFAULT 0,
    match_rate   REAL NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_rentledger_imports_landlord ON rentledger_imports (landlord_id, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_imports`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_rentledger_transactions",
			Version: "20260101000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS rentledger_transactions (
    id                    TEXT PRIMARY KEY,
    import_id             TEXT NOT NULL DEFAULT '',
    source_transaction_id TEXT NOT NULL DEFAULT '',
    amount_cents          INTEGER NOT NULL DEFAULT 0,
    amount_currency       TEXT NOT NULL DEFAULT '',
    payer_name            TEXT NOT NULL DEFAULT '',
    payer_phone           TEXT NOT NULL DEFAULT '',
    timestamp             TEXT NOT NULL DEFAULT (datetime('now')),
    matched_tenancy_id    TEXT NOT NULL DEFAULT '',
    confidence            TEXT NOT NULL DEFAULT '',
    score                 REAL NOT NULL DEFAULT 0,
    match_status          TEXT NOT NULL DEFAULT '',
    promoted_payment_id   TEXT NOT NULL DEFAULT '',
    created_at            TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_rentledger_transactions_import ON rentledger_transactions (import_id);
CREATE INDEX IF NOT EXISTS idx_rentledger_transactions_source ON rentledger_transactions (source_transaction_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS rentledger_transactions`)
				return err
			},
		},
	)
}
