package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/diag"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
)

const serviceName = "storefront-go"

type HealthHandler struct {
	Probes []clients.HealthProbe

	// DB is nil when MONGODB_URI is unset.
	DB     diag.Prober
	Logger *zap.Logger
}

func (h *HealthHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: serviceName})
}

func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results, healthy := clients.CheckAll(r.Context(), h.Probes)

	status := "ok"
	if !healthy {
		status = "degraded"
	}
	WriteJSON(w, http.StatusOK, dto.UpstreamsHealthResponse{Status: status, Service: serviceName, Upstream: results})
}

func (h *HealthHandler) DBTest(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteJSON(w, http.StatusServiceUnavailable, dto.DBTestResponse{Message: "MongoDB is not configured"})
		return
	}
	rep, err := h.DB.Report(r.Context())
	if err != nil {
		h.Logger.Error("mongodb diagnostics", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, dto.DBTestResponse{
			Message: "Cannot connect to MongoDB",
			Error:   err.Error(),
		})
		return
	}
	WriteJSON(w, http.StatusOK, dto.DBTestResponse{Success: true, Database: rep.Database, Collections: rep.Collections})
}
