// Package cli provides the interactive PocketSchool command-line client.
//
// It wires configuration, the local store, the REST client, the connectivity
// watcher and the state projection, then runs a REPL. Changes made while the
// server is unreachable are queued locally and replayed when it comes back.
//
// Typical session:
//
//	login
//	addcourse
//	courses
//	addlecture 1
//	lecture 1 1 completed
//	next 1
//
// Courses are addressed by their position in "courses" or an id prefix;
// lectures and assignments by their position in "course <c>" or an id prefix.
package cli
