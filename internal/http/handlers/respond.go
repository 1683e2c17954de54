package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	errNoSession = errors.New("no session in request context")
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteOK(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	WriteJSON(w, status, dto.Envelope{
		Success:       true,
		Message:       message,
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

// WriteError maps err onto a status code and a failure envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorEnvelope(err)
	body.CorrelationID = middleware.GetCorrelationID(r.Context())
	WriteJSON(w, status, body)
}

func errorEnvelope(err error) (int, dto.Envelope) {
	var (
		verr   *validation.Error
		apiErr *clients.APIError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, dto.Envelope{Message: "Validation failed", Fields: verr.Fields}
	case errors.Is(err, query.ErrInvalid), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, dto.Envelope{Message: err.Error()}
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, dto.Envelope{Message: "Cart is empty"}
	case errors.Is(err, clients.ErrTooManyImages):
		return http.StatusBadRequest, dto.Envelope{Message: err.Error()}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, dto.Envelope{Message: err.Error()}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, dto.Envelope{Message: err.Error()}
	case errors.Is(err, clients.ErrUnauthorized):
		msg := "Unauthorized"
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return http.StatusUnauthorized, dto.Envelope{Message: msg, Redirect: session.LoginPath}
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, dto.Envelope{Message: clients.UserMessage(apiErr), Error: apiErr.Detail}
	case errors.Is(err, clients.ErrNetwork):
		return http.StatusBadGateway, dto.Envelope{Message: "Network error", Error: err.Error()}
	}
	return http.StatusInternalServerError, dto.Envelope{Message: "internal server error"}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}

// pathSlug returns the unescaped slug parameter. chi matches on the raw path,
// so an encoded slug arrives still escaped.
func pathSlug(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	if slug, err := url.PathUnescape(raw); err == nil {
		return slug
	}
	return raw
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return id, nil
}
