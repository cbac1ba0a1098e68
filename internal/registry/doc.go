// Package registry is the client for the FAA UAS DOC public API, the
// upstream source of Remote ID compliance records.
//
// Three read-only operations are consumed:
//   - ListRecords: paginated publicDOCRev listing, ordered by updatedAt
//     descending, filtered to docType=rid
//   - ListSerials: the serial-number snapshot for one tracking number
//   - FindBySerial: direct serial lookup, used by the resolution fallback
//
// Every failure the registry can produce - network error, timeout, non-2xx
// status - surfaces as a *TransportError. Transient failures (connection
// errors, 429, 5xx) are retried with capped exponential backoff before the
// error is returned; retry policy lives here and nowhere else.
package registry
