// Package models defines the core domain models of the campus cash ledger.
//
// # Models
//
//   - CashRegister: one physical cash drawer session of a campus (caja)
//   - Transaction: a single money movement, optionally linked to a debt and/or an open register
//   - Debt: an amount a student owes by a due date, reduced by linked paid transactions
//   - Receipt: read-only snapshot of a transaction used by receipt renderers
//
// Campuses, students and academic assignments are owned by other systems and are
// referenced here by their numeric ids only.
//
// # Money
//
// All amounts are decimal.Decimal values with two-decimal semantics. Physical cash
// is described by Denominations, a face value to count map.
//
// # Relationships
//
// Relationships are expressed with id strings rather than pointers, so a model can be
// persisted and transported without cycles.
package models
