package dto

import "github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type RememberedResponse struct {
	RememberMe bool   `json:"rememberMe"`
	Email      string `json:"email,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status clients.Status `json:"status"`
}

type DeleteImageRequest struct {
	Path string `json:"path"`
}
