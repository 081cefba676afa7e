// Package store is the client's Local Record Store. It opens the SQLite
// database once, runs the embedded migrations and exposes the record,
// pending-change and metadata repositories plus a typed layer for users and
// courses.
//
// Storage failures never reach callers as crashes: the first failing
// operation logs a warning and switches the store to in-memory repositories
// for the rest of the process.
package store
