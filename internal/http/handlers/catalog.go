package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/images"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/search"
)

// RelatedProducts is how many related products a product page shows.
const RelatedProducts = 4

type CatalogHandler struct {
	categories *clients.CategoryClient
	products   *clients.ProductClient
	searcher   *search.Searcher
	images     *images.Resolver
	logger     *zap.Logger
}

func NewCatalogHandler(
	categories *clients.CategoryClient,
	products *clients.ProductClient,
	searcher *search.Searcher,
	resolver *images.Resolver,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{categories: categories, products: products, searcher: searcher, images: resolver, logger: logger}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", cats)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	cat, err := h.categories.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", cat)
}

func (h *CatalogHandler) CategoryBySlug(w http.ResponseWriter, r *http.Request) {
	cat, err := h.categories.GetBySlug(r.Context(), pathSlug(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", cat)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParseProducts(r.URL.Query())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	page, err := h.products.List(r.Context(), q)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", dto.ProductPage{Data: h.views(page.Data), Pagination: page.Pagination})
}

// GetProduct answers with the product and up to RelatedProducts products of
// the same category. A failing related lookup only drops the related list.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.writeDetail(w, r, p)
}

func (h *CatalogHandler) ProductBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetBySlug(r.Context(), pathSlug(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.writeDetail(w, r, p)
}

func (h *CatalogHandler) writeDetail(w http.ResponseWriter, r *http.Request, p clients.Product) {
	related, err := h.products.Related(r.Context(), p, RelatedProducts)
	if err != nil {
		h.logger.Warn("related products", zap.Int64("product_id", p.ID), zap.Error(err))
		related = nil
	}
	WriteOK(w, r, http.StatusOK, "", dto.ProductDetail{Product: h.view(p), Related: h.views(related)})
}

// Search backs the autocomplete box: GET /search?q=&page=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, r, fmt.Errorf("%w: invalid page %q", ErrBadRequest, raw))
			return
		}
		page = n
	}
	res, err := h.searcher.Search(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", res)
}

func (h *CatalogHandler) view(p clients.Product) dto.ProductView {
	return dto.ProductView{
		Product:  p,
		ImageURL: h.images.URL(p.Image),
		Gallery:  h.images.URLs(p.ImageList()),
	}
}

func (h *CatalogHandler) views(ps []clients.Product) []dto.ProductView {
	out := make([]dto.ProductView, 0, len(ps))
	for _, p := range ps {
		out = append(out, h.view(p))
	}
	return out
}
