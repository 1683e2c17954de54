package handlers

import (
	"fmt"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/images"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

// CartHandler serves the cart of the session carried by the request.
type CartHandler struct {
	carts    *cart.Provider
	products *clients.ProductClient
	images   *images.Resolver
}

func NewCartHandler(carts *cart.Provider, products *clients.ProductClient, resolver *images.Resolver) *CartHandler {
	return &CartHandler{carts: carts, products: products, images: resolver}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.cart(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", m.Snapshot())
}

// AddItem looks the product up so name and price come from the catalog,
// never from the browser.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in dto.AddCartItemRequest
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := validation.Struct(in); err != nil {
		WriteError(w, r, err)
		return
	}
	m, err := h.cart(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	p, err := h.products.Get(r.Context(), in.ProductID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if p.Status != clients.ProductActive {
		WriteError(w, r, fmt.Errorf("%w: %s is not available", ErrConflict, p.Name))
		return
	}

	m.Add(cart.Line{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.Decimal,
		Image:    h.images.URL(p.Image),
		Quantity: in.Quantity,
	})
	WriteOK(w, r, http.StatusOK, "Added to cart", m.Snapshot())
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var in dto.UpdateCartItemRequest
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}
	m, err := h.cart(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if !contains(m, id) {
		WriteError(w, r, fmt.Errorf("%w: product %d is not in the cart", ErrNotFound, id))
		return
	}
	m.UpdateQuantity(id, in.Quantity)
	WriteOK(w, r, http.StatusOK, "", m.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	m, err := h.cart(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	m.Remove(id)
	WriteOK(w, r, http.StatusOK, "", m.Snapshot())
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	m, err := h.cart(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	m.Clear()
	WriteOK(w, r, http.StatusOK, "Cart cleared", m.Snapshot())
}

func (h *CartHandler) cart(r *http.Request) (*cart.Manager, error) {
	return cartFor(r, h.carts)
}

func cartFor(r *http.Request, carts *cart.Provider) (*cart.Manager, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return carts.Get(r.Context(), s.ID()), nil
}

func contains(m *cart.Manager, id int64) bool {
	for _, l := range m.Lines() {
		if l.ID == id {
			return true
		}
	}
	return false
}
