package dto

import "github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type UpstreamsHealthResponse struct {
	Status   string                 `json:"status"`
	Service  string                 `json:"service"`
	Upstream []clients.HealthResult `json:"upstream"`
}

// DBTestResponse keeps database and collections at the top level, the shape
// existing dashboards read.
type DBTestResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	Database    string   `json:"database,omitempty"`
	Collections []string `json:"collections,omitempty"`
	Error       string   `json:"error,omitempty"`
}
