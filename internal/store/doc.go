// Package store provides SQLite-backed durable storage for the serial
// cache.
//
// Three tables make up the cache:
//   - exact_serials: one row per serial number (primary key), replace
//     semantics on conflict
//   - serial_ranges: interval records with synthetic row IDs; the store
//     enforces no natural unique constraint, callers do their own
//     existence checks before deciding insert vs update
//   - metadata: string key/value pairs for build provenance and the
//     last_sync_date watermark
//
// Tombstoned rows (deleted = 1) stay in place for audit but are invisible
// to every read path.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single-connection pool: SQLite supports one writer at a time
//
// All failures surface as *StoreError. The store never retries; retry
// policy belongs to the network layer, not here.
package store
