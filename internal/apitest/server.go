// Package apitest runs an in-memory stand-in for the remote storefront API.
// It speaks the same envelope protocol and keeps everything in memory.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "secret"
)

type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	categories []clients.Category
	products   []clients.Product
	orders     []clients.Order
	users      map[string]registered
	tokens     map[string]clients.User
	uploads    []string
	requests   []RecordedRequest
	failNext   *failure
	nextID     int64
}

type registered struct {
	user     clients.User
	password string
}

// New starts the fake API. Its base URL, including the /api prefix, is
// BaseURL(). The server is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Server{
		users: map[string]registered{
			AdminEmail: {
				user:     clients.User{ID: 1, Name: "Admin", Email: AdminEmail, Role: "admin", CreatedAt: now, UpdatedAt: now},
				password: AdminPassword,
			},
		},
		tokens: make(map[string]clients.User),
		nextID: 1000,
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.injectFailure)

		// health probe target
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeOK(w, http.StatusOK, "ok", nil)
		})

		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)

		r.Get("/categories", s.listCategories)
		r.Get("/categories/{id}", s.getCategory)
		r.Get("/categories/slug/{slug}", s.getCategoryBySlug)
		r.Get("/products", s.listProducts)
		r.Get("/products/{id}", s.getProduct)
		r.Get("/products/slug/{slug}", s.getProductBySlug)
		r.Post("/orders", s.createOrder)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Post("/categories", s.createCategory)
			r.Put("/categories/{id}", s.updateCategory)
			r.Delete("/categories/{id}", s.deleteCategory)

			r.Post("/products", s.createProduct)
			r.Put("/products/{id}", s.updateProduct)
			r.Delete("/products/{id}", s.deleteProduct)

			r.Get("/orders", s.listOrders)
			r.Get("/orders/{id}", s.getOrder)
			r.Patch("/orders/{id}/status", s.updateOrderStatus)
			r.Delete("/orders/{id}", s.deleteOrder)

			r.Get("/statistics", s.statistics)

			r.Post("/upload/image", s.uploadImage)
			r.Post("/upload/images", s.uploadImages)
			r.Delete("/upload/image", s.deleteImage)
		})
	})
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) BaseURL() string { return s.URL + "/api" }

// FailNext makes the next API call answer status with a success:false
// envelope carrying message.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = &failure{status: status, message: message}
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]clients.User)
}

// IssueToken returns a valid admin token without a login round trip.
func (s *Server) IssueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = s.users[AdminEmail].user
	return token
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request whose path ends with suffix.
func (s *Server) LastRequest(suffix string) (RecordedRequest, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if strings.HasSuffix(reqs[i].Path, suffix) {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}

func (s *Server) Orders() []clients.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]clients.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Server) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, map[string]any{"success": true, "message": message, "data": data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message, "error": http.StatusText(status)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFail(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return false
	}
	return true
}
