// Package syncer drives synchronization of the local serial cache against
// the registry.
//
// Two flows share the merge logic:
//   - FullBuild enumerates the entire catalogue and rebuilds the store
//     from empty. It is all-or-nothing: the store file is only touched
//     after the complete catalogue listing succeeds.
//   - Update examines the most recently changed records, bounded by a
//     cutoff (explicit date, days back, or the stored last_sync_date
//     watermark), and merges them with existence-checked upserts so a
//     repeated run updates rows instead of duplicating them.
//
// Both flows throttle every registry call with a fixed delay - the
// upstream rejects unthrottled clients, so the delay is a sequencing
// requirement, not tuning. Both conclude by advancing the last_sync_date
// watermark (skipped in dry-run). A file lock serializes runs against the
// same store; concurrent syncs are not supported.
//
// Every run returns a report value with aggregate counters instead of
// failing on the first bad record: a failed per-record serial fetch is
// counted and skipped, only catalogue-listing failures abort.
package syncer
