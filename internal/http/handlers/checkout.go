package handlers

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
)

type CheckoutHandler struct {
	svc   *checkout.Service
	carts *cart.Provider
}

func NewCheckoutHandler(svc *checkout.Service, carts *cart.Provider) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, carts: carts}
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := decodeJSON(w, r, &form); err != nil {
		WriteError(w, r, err)
		return
	}
	m, err := cartFor(r, h.carts)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	order, err := h.svc.PlaceOrder(r.Context(), form, m)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusCreated, "Order placed", order)
}
