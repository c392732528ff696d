package api

// ErrorKindHeader carries the ledger error kind of a failed call (validation, mismatch,
// conflict, not_found or infrastructure) so clients can tell input problems from outages.
const ErrorKindHeader = "Ledger-Error-Kind"
