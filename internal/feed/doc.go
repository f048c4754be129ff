// Package feed carries customer change notifications over a WebSocket.
//
// The mock backend mounts a Hub on Path and calls Broadcast after every
// successful create. Clients call Subscribe and receive one Event per
// change; the interactive screen answers each one with a revalidation of
// the customer list.
//
// Wire format is one JSON text message per event:
//
//	{"type":"customers.changed","email":"ada@example.com"}
package feed
