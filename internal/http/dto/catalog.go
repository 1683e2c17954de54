package dto

import "github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"

// ProductView is a product with its image paths resolved to absolute URLs.
type ProductView struct {
	clients.Product
	ImageURL string   `json:"image_url"`
	Gallery  []string `json:"gallery"`
}

type ProductDetail struct {
	Product ProductView   `json:"product"`
	Related []ProductView `json:"related"`
}

type ProductPage struct {
	Data       []ProductView      `json:"data"`
	Pagination clients.Pagination `json:"pagination"`
}
