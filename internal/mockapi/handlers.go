package mockapi

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/muurk/customers/internal/api"
	"github.com/muurk/customers/internal/feed"
	"github.com/muurk/customers/internal/form"
	"github.com/muurk/customers/internal/logging"
)

// Error codes returned by the mock backend
const (
	CodeInvalidJSON      = "invalid_json"
	CodeValidation       = "validation_error"
	CodeDuplicateEmail   = "duplicate_email"
	CodeInternal         = "internal_error"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
)

// HealthPath is the liveness endpoint
const HealthPath = "/health"

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type handler struct {
	repo Repository
	hub  *feed.Hub
}

// NewRouter wires the API routes. hub may be nil to disable the change
// feed; latency is added before every API response.
func NewRouter(repo Repository, hub *feed.Hub, latency time.Duration) *mux.Router {
	h := &handler{repo: repo, hub: hub}

	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc(HealthPath, h.health).Methods(http.MethodGet)

	apiRoutes := r.NewRoute().Subrouter()
	if latency > 0 {
		apiRoutes.Use(delay(latency))
	}
	apiRoutes.HandleFunc(api.CustomersPath, h.listCustomers).Methods(http.MethodGet)
	apiRoutes.HandleFunc(api.CustomersPath, h.createCustomer).Methods(http.MethodPost)

	if hub != nil {
		r.Handle(feed.Path, hub).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		logging.Error("List customers failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "could not load customers")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var c api.Customer
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidJSON, "request body must be a JSON customer")
		return
	}

	if msg := validationMessage(c); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, msg)
		return
	}

	created, err := h.repo.Create(r.Context(), c)
	if errors.Is(err, ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, CodeDuplicateEmail,
			fmt.Sprintf("A customer with email %s already exists", strings.TrimSpace(c.Email)))
		return
	}
	if err != nil {
		logging.Error("Create customer failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "could not save customer")
		return
	}

	logging.Info("Customer created", zap.String("email", created.Email))
	if h.hub != nil {
		h.hub.Broadcast(feed.Changed(created.Email))
	}
	writeJSON(w, http.StatusCreated, created)
}

// validationMessage applies the same presence rule as the client form
func validationMessage(c api.Customer) string {
	draft := form.Draft{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		BusinessName: c.BusinessName,
	}
	missing := draft.Missing()
	if len(missing) == 0 {
		return ""
	}
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = f.String()
	}
	return "Missing required fields: " + strings.Join(names, ", ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// delay holds every response back by d, or until the client goes away
func delay(d time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade through the recorder
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
