package store

// schemaSQL is written in the subset of SQL shared by sqlite and postgres.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    available_balance    BIGINT NOT NULL DEFAULT 0,
    status               TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    account_id           TEXT NOT NULL DEFAULT '',
    amount               BIGINT NOT NULL,
    tx_date              TEXT NOT NULL,
    description          TEXT NOT NULL DEFAULT '',
    category             TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS budget_items (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    frequency            TEXT NOT NULL,
    amount               BIGINT NOT NULL DEFAULT 0,
    days_per_week        INTEGER NOT NULL DEFAULT 0,
    budget_group         TEXT NOT NULL DEFAULT '',
    parent_category      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS goals (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    target               BIGINT NOT NULL,
    saved                BIGINT NOT NULL DEFAULT 0,
    monthly_allocation   BIGINT NOT NULL DEFAULT 0,
    due_date             TEXT NOT NULL DEFAULT '',
    priority             INTEGER NOT NULL DEFAULT 0,
    updated_at           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_settings (
    id                   INTEGER PRIMARY KEY,
    payday_of_month      INTEGER NOT NULL,
    cadence              TEXT NOT NULL,
    budget_method        TEXT NOT NULL,
    needs_pct            INTEGER NOT NULL,
    wants_pct            INTEGER NOT NULL,
    savings_pct          INTEGER NOT NULL,
    strategy             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             BIGINT NOT NULL,
    size_bytes           BIGINT NOT NULL,
    records              INTEGER NOT NULL DEFAULT 0,
    imported_at          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(tx_date);
CREATE INDEX IF NOT EXISTS idx_goals_priority ON goals(priority);
`
