// Package client talks to the PocketSchool REST API.
//
// # Overview
//
// The package provides:
//  1. The Client interface: auth, profile, export and per-entity
//     create/update/delete/list/get for courses, lectures and assignments.
//  2. HTTPClient, a net/http implementation that sends JSON to the versioned
//     base URL, adds "Authorization: Bearer <token>" while a session exists,
//     and decodes the {data, meta} envelope explicitly.
//  3. HealthProber, a gRPC health-check client used to probe reachability.
//
// # Error Handling
//
// Failures are classified so callers can react with errors.Is / errors.As:
//
//   - ErrUnavailable: the request did not reach the server (connection
//     refused, timeout, 502/503/504). Mutations are queued on this error.
//   - ErrUnauthorized: 401/403; also matched by the *ServerError carrying it.
//   - *ServerError: any other non-2xx answer, with the server's code, message
//     and field errors.
//   - ErrUnexpectedResponse: a 2xx body that lacks "data".
package client
