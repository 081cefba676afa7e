// Package models holds the PocketSchool domain types shared by the client
// and the server: users, courses with their lectures and assignments, the
// mutation payloads exchanged over the REST API, and the pending-change log
// entries the client queues while offline.
//
// Course status rules live here too (see DeriveStatus), so the client's
// optimistic projection and the server's authoritative copy agree.
package models
