// Package records is the client's keyed record storage: one logical
// collection per Kind, each record addressed by its id. Put overwrites, so
// every operation is idempotent.
//
// SQLiteRepository persists to the local database; MemoryRepository keeps
// records for the lifetime of the process and backs the store when the
// database cannot be used.
package records
