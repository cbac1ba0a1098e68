// Package resolve implements the resolution cascade: exact lookup, range
// lookup, optional remote fallback, optional cache write-back.
//
// The cascade short-circuits on first success and every stage before the
// cache write is read-only, so any number of resolutions may run
// concurrently with each other. Remote failures never surface as errors:
// the registry is best-effort and a fallback miss is just a miss.
package resolve
