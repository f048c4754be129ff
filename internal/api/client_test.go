package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const mockListResponse = `[{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"},{"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","businessName":"Navy"}]`

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:3000/")

	if client.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %s, want http://localhost:3000", client.BaseURL)
	}

	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}

	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
}

func TestSetTimeout(t *testing.T) {
	client := NewClient(DefaultBaseURL)
	client.SetTimeout(5 * time.Second)

	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.HTTPClient.Timeout)
	}
}

func TestURL(t *testing.T) {
	client := NewClient("http://api.local")

	tests := []struct {
		path string
		want string
	}{
		{"", "http://api.local"},
		{"/api/customers", "http://api.local/api/customers"},
		{"api/customers", "http://api.local/api/customers"},
	}

	for _, tt := range tests {
		if got := client.URL(tt.path); got != tt.want {
			t.Errorf("URL(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestListCustomers_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Request method = %s, want GET", r.Method)
		}
		if r.URL.Path != CustomersPath {
			t.Errorf("Request path = %s, want %s", r.URL.Path, CustomersPath)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockListResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	list, err := client.ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("ListCustomers() error = %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}

	// Server order is preserved
	if list[0].Email != "ada@example.com" || list[1].Email != "grace@example.com" {
		t.Errorf("list order = [%s %s], want [ada grace]", list[0].Email, list[1].Email)
	}

	if list[1].BusinessName != "Navy" {
		t.Errorf("BusinessName = %s, want Navy", list[1].BusinessName)
	}
}

func TestListCustomers_EmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	list, err := NewClient(server.URL).ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("ListCustomers() error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("list = %#v, want empty non-nil list", list)
	}
}

func TestListCustomers_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"internal","message":"database unavailable"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ListCustomers(context.Background())
	if err == nil {
		t.Fatal("ListCustomers() should return error for 500")
	}

	if !IsAPIError(err) {
		t.Fatalf("error should be API error, got %T: %v", err, err)
	}

	apiErr := err.(*Error)
	if apiErr.Code != "internal" {
		t.Errorf("Code = %s, want internal", apiErr.Code)
	}
	if apiErr.Message != "database unavailable" {
		t.Errorf("Message = %s, want database unavailable", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestListCustomers_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ListCustomers(context.Background())
	if !IsParseError(err) {
		t.Fatalf("error should be parse error, got %T: %v", err, err)
	}
	if StatusCode(err) != http.StatusBadGateway {
		t.Errorf("StatusCode() = %d, want 502", StatusCode(err))
	}
}

func TestListCustomers_MalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"firstName":`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ListCustomers(context.Background())
	if !IsParseError(err) {
		t.Errorf("error should be parse error, got %T: %v", err, err)
	}
}

func TestListCustomers_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).ListCustomers(context.Background())
	if err == nil {
		t.Fatal("ListCustomers() should fail against a closed server")
	}

	if !IsNetworkError(err) {
		t.Errorf("error should be network error, got %T: %v", err, err)
	}

	if StatusCode(err) != 0 {
		t.Errorf("StatusCode() = %d, want 0", StatusCode(err))
	}
}

func TestListCustomers_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL)
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.ListCustomers(context.Background())
	if err == nil {
		t.Fatal("ListCustomers() should time out")
	}

	apiErr, ok := err.(*Error)
	if !ok || apiErr.Type != ErrTypeTimeout {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestCreateCustomer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Request method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}

		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if _, ok := raw["businessName"]; ok {
			t.Error("empty businessName should be omitted from the payload")
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`))
	}))
	defer server.Close()

	created, err := NewClient(server.URL).CreateCustomer(context.Background(), Customer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	if created.Email != "ada@example.com" {
		t.Errorf("Email = %s, want ada@example.com", created.Email)
	}
}

func TestCreateCustomer_EmptyBodyEchoesInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	in := Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	created, err := NewClient(server.URL).CreateCustomer(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	if *created != in {
		t.Errorf("created = %+v, want %+v", *created, in)
	}
}

func TestCreateCustomer_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":"validation_error","message":"email is required"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CreateCustomer(context.Background(), Customer{FirstName: "Ada"})
	if !IsAPIError(err) {
		t.Fatalf("error should be API error, got %T: %v", err, err)
	}

	if got := UserMessage(err); got != "email is required" {
		t.Errorf("UserMessage() = %s, want email is required", got)
	}
}

func TestFetchJSON_NilOutIgnoresBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	if err := NewClient(server.URL).FetchJSON(context.Background(), http.MethodGet, "/", nil, nil); err != nil {
		t.Errorf("FetchJSON() error = %v, want nil", err)
	}
}

func TestFetchJSON_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(server.URL).FetchJSON(ctx, http.MethodGet, CustomersPath, nil, nil)
	if !IsNetworkError(err) {
		t.Errorf("error should be network error, got %T: %v", err, err)
	}
}
