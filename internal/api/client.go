package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/customers/internal/logging"
)

const (
	// DefaultBaseURL is where the development backend listens
	DefaultBaseURL = "http://localhost:3000"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second
)

// Client issues JSON requests against the customers API
type Client struct {
	// BaseURL is the scheme and host of the API (e.g., "http://localhost:3000")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// URL joins path onto the base URL
func (c *Client) URL(path string) string {
	if path == "" {
		return c.BaseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

// FetchJSON performs a single request and decodes the JSON response.
//
// body, when non-nil, is sent as a JSON document. The response body is
// parsed as JSON whatever the status code: a 2xx body is decoded into out
// (when out is non-nil), anything else is decoded into an *Error and
// returned. Requests are never retried.
func (c *Client) FetchJSON(ctx context.Context, method, path string, body, out any) error {
	target := c.URL(path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Type: ErrTypeUnknown, Code: CodeRequest, Message: "failed to encode request body", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Type: ErrTypeUnknown, Code: CodeRequest, Message: fmt.Sprintf("failed to create %s request", method), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.LogRequest(method, target)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}

	logging.LogResponse(method, target, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return NewParseError(resp.StatusCode, "failed to parse JSON response", err)
	}

	return nil
}

// decodeError turns a non-2xx body into an *Error
func decodeError(statusCode int, data []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return NewParseError(statusCode, fmt.Sprintf("failed to parse error response (HTTP %d)", statusCode), err)
	}
	return NewAPIError(statusCode, payload.Code, payload.Message)
}

// ListCustomers fetches the full customer list
func (c *Client) ListCustomers(ctx context.Context) (CustomerList, error) {
	var list CustomerList
	if err := c.FetchJSON(ctx, http.MethodGet, CustomersPath, nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = CustomerList{}
	}
	return list, nil
}

// CreateCustomer posts a new customer and returns the record the backend
// stored. A 2xx response with an empty body echoes the submitted customer.
func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (*Customer, error) {
	var created Customer
	if err := c.FetchJSON(ctx, http.MethodPost, CustomersPath, customer, &created); err != nil {
		return nil, err
	}
	if created.Email == "" {
		created = customer
	}
	return &created, nil
}
