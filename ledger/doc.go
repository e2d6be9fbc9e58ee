// Package ledger keeps the in-memory history of counter values and derives
// statistics and goal progress from it.
//
// Entries are append-only and chronologically ordered; an entry stamped
// earlier than its predecessor is clamped to the predecessor's timestamp.
// Derived values are recomputed on every call and never stored.
//
// Export writes the history as a JSON array with decimal-string values and
// RFC 3339 timestamps; Import validates such a document and replaces the
// history only when every record is well formed.
package ledger
