package postgres

// schema mirrors the SQLite layout with native numeric and JSONB columns.
// Timestamps stay as Unix microseconds so both backends order rows identically.
const schema = `
CREATE TABLE IF NOT EXISTS cash_registers (
    id TEXT PRIMARY KEY,
    campus_id BIGINT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('open', 'closed')),
    initial_amount NUMERIC(14,2) NOT NULL,
    initial_denominations JSONB,
    final_amount NUMERIC(14,2),
    final_denominations JSONB,
    next_day_amount NUMERIC(14,2),
    next_day_denominations JSONB,
    expected_cash NUMERIC(14,2),
    cash_difference NUMERIC(14,2),
    totals JSONB NOT NULL DEFAULT '{}',
    notes TEXT NOT NULL DEFAULT '',
    opened_by TEXT NOT NULL DEFAULT '',
    closed_by TEXT NOT NULL DEFAULT '',
    opened_at BIGINT NOT NULL,
    closed_at BIGINT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_registers_one_open
    ON cash_registers(campus_id) WHERE status = 'open';
CREATE INDEX IF NOT EXISTS idx_cash_registers_campus ON cash_registers(campus_id, opened_at);

CREATE TABLE IF NOT EXISTS debts (
    id TEXT PRIMARY KEY,
    student_id BIGINT NOT NULL,
    assignment_id BIGINT,
    concept TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    total_amount NUMERIC(14,2) NOT NULL,
    paid_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    due_date BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_student ON debts(student_id, due_date);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL UNIQUE,
    campus_id BIGINT NOT NULL,
    student_id BIGINT,
    cash_register_id TEXT REFERENCES cash_registers(id),
    debt_id TEXT REFERENCES debts(id),
    transaction_type TEXT NOT NULL CHECK (transaction_type IN ('income', 'expense')),
    amount NUMERIC(14,2) NOT NULL,
    payment_method TEXT NOT NULL CHECK (payment_method IN ('cash', 'card', 'transfer')),
    denominations JSONB,
    paid SMALLINT NOT NULL DEFAULT 0,
    payment_date BIGINT,
    notes TEXT NOT NULL DEFAULT '',
    folio BIGINT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    signature_url TEXT NOT NULL DEFAULT '',
    reverses_id TEXT,
    reversed_by_id TEXT,
    voided_at BIGINT,
    created_by TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    UNIQUE (campus_id, folio)
);

CREATE INDEX IF NOT EXISTS idx_transactions_register ON transactions(cash_register_id);
CREATE INDEX IF NOT EXISTS idx_transactions_debt ON transactions(debt_id);

CREATE TABLE IF NOT EXISTS debt_payments (
    debt_id TEXT NOT NULL REFERENCES debts(id) ON DELETE CASCADE,
    transaction_id TEXT NOT NULL REFERENCES transactions(id),
    amount NUMERIC(14,2) NOT NULL,
    applied_at BIGINT NOT NULL,
    PRIMARY KEY (debt_id, transaction_id)
);

CREATE TABLE IF NOT EXISTS folio_counters (
    campus_id BIGINT PRIMARY KEY,
    last_folio BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    event_data JSONB NOT NULL,
    event_metadata JSONB NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type, created_at);
`
