// Package store keeps the last known state of a remote resource and
// refreshes it on demand.
//
// A Store moves through idle, loading, success and failure. Mount issues
// the first request; Revalidate issues another one at any time. Requests
// may overlap: each one captures a sequence number and only the response
// to the latest issued request is applied, whatever order they complete
// in.
//
//	s := store.New(client.URL(api.CustomersPath), client.ListCustomers)
//	unsubscribe := s.Subscribe(func(snap store.Snapshot[api.CustomerList]) {
//	    // re-render
//	})
//	defer unsubscribe()
//	s.Mount()
//
// A Cache scopes stores to a view: one store per endpoint URL, all closed
// together when the view goes away.
package store
