// Package store provides the SQLite integration points of nlsql.
//
// Two roles share one connection type:
//
//   - Schema introspection (OpenReadOnly + Introspect): reads table,
//     column, declared type, primary key and foreign key metadata from a
//     user database and turns it into a schema.TypedShape. The database is
//     opened with mode=ro and query_only; generated SQL is never executed.
//   - Synthesis history (Open + WriteSynthesis/ReadSyntheses): an
//     append-only log of handled requests keyed by request id.
//
// # Database Configuration (history)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// History queries are ordered by seq ASC, id ASC COLLATE BINARY so
// listings are deterministic.
package store
