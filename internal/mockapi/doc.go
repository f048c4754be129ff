// Package mockapi is a development backend for the customers API.
//
// It serves the two endpoints the client consumes plus a change feed and
// a health check:
//
//	GET  /api/customers         200 CustomerList
//	POST /api/customers         201 Customer | 400 invalid_json | 409 duplicate_email | 422 validation_error
//	GET  /api/customers/events  WebSocket change feed
//	GET  /health                200 {"status":"ok"}
//
// Errors use the same {"code","message"} body the client parses. Customers
// live in memory by default or in a SQLite file when a database path is
// given. An artificial latency can be added to every API response to make
// loading and revalidation states visible.
package mockapi
