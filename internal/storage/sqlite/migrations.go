package sqlite

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: cash_registers and debts must be created BEFORE transactions due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS cash_registers (
    id TEXT PRIMARY KEY,
    campus_id INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('open', 'closed')),
    initial_amount TEXT NOT NULL,
    initial_denominations TEXT,
    final_amount TEXT,
    final_denominations TEXT,
    next_day_amount TEXT,
    next_day_denominations TEXT,
    expected_cash TEXT,
    cash_difference TEXT,
    totals TEXT NOT NULL DEFAULT '{}',
    notes TEXT NOT NULL DEFAULT '',
    opened_by TEXT NOT NULL DEFAULT '',
    closed_by TEXT NOT NULL DEFAULT '',
    opened_at INTEGER NOT NULL,
    closed_at INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_registers_one_open
    ON cash_registers(campus_id) WHERE status = 'open';
CREATE INDEX IF NOT EXISTS idx_cash_registers_campus ON cash_registers(campus_id, opened_at);

CREATE TABLE IF NOT EXISTS debts (
    id TEXT PRIMARY KEY,
    student_id INTEGER NOT NULL,
    assignment_id INTEGER,
    concept TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    total_amount TEXT NOT NULL,
    paid_amount TEXT NOT NULL DEFAULT '0',
    status TEXT NOT NULL,
    due_date INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_student ON debts(student_id, due_date);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL UNIQUE,
    campus_id INTEGER NOT NULL,
    student_id INTEGER,
    cash_register_id TEXT,
    debt_id TEXT,
    transaction_type TEXT NOT NULL CHECK (transaction_type IN ('income', 'expense')),
    amount TEXT NOT NULL,
    payment_method TEXT NOT NULL CHECK (payment_method IN ('cash', 'card', 'transfer')),
    denominations TEXT,
    paid INTEGER NOT NULL DEFAULT 0,
    payment_date INTEGER,
    notes TEXT NOT NULL DEFAULT '',
    folio INTEGER NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    signature_url TEXT NOT NULL DEFAULT '',
    reverses_id TEXT,
    reversed_by_id TEXT,
    voided_at INTEGER,
    created_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (campus_id, folio),
    FOREIGN KEY (cash_register_id) REFERENCES cash_registers(id),
    FOREIGN KEY (debt_id) REFERENCES debts(id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_register ON transactions(cash_register_id);
CREATE INDEX IF NOT EXISTS idx_transactions_debt ON transactions(debt_id);

CREATE TABLE IF NOT EXISTS debt_payments (
    debt_id TEXT NOT NULL,
    transaction_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    applied_at INTEGER NOT NULL,
    PRIMARY KEY (debt_id, transaction_id),
    FOREIGN KEY (debt_id) REFERENCES debts(id) ON DELETE CASCADE,
    FOREIGN KEY (transaction_id) REFERENCES transactions(id)
);

CREATE TABLE IF NOT EXISTS folio_counters (
    campus_id INTEGER PRIMARY KEY,
    last_folio INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    event_data TEXT NOT NULL,
    event_metadata TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type, created_at);
`
