// Package store persists the movie registry and user registry in SQLite.
//
// Movies are shared records keyed by their external identifier; users hold
// set-semantic references into them. All mutations are single-statement or
// transactional upserts so the conversational handlers and the release sweep
// can run concurrently without coordinating beyond the database itself.
package store
