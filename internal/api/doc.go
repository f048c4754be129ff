// Package api is the HTTP client for the customers backend.
//
// FetchJSON is the single primitive: it sends an optional JSON body,
// parses the response as JSON regardless of status, and surfaces non-2xx
// responses as a structured *Error carrying the backend's code and
// message. ListCustomers and CreateCustomer wrap the two endpoints:
//
//	GET  /api/customers  -> 200 CustomerList | 4xx/5xx Error
//	POST /api/customers  -> 201/200 Customer  | 4xx/5xx Error
//
// # Error Handling
//
// Transport failures are classified into timeout, connection refused, DNS
// and generic network errors. Use IsNetworkError, IsAPIError and
// IsParseError to branch, and UserMessage for text suitable for a person:
//
//	list, err := client.ListCustomers(ctx)
//	if err != nil {
//	    fmt.Println(api.UserMessage(err))
//	}
//
// Requests are never retried; the caller decides.
package api
