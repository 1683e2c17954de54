package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

const maxUploadBytes = 32 << 20

// AdminHandler forwards admin operations with the session's token.
// Every route sits behind RequireAuth.
type AdminHandler struct {
	Categories *clients.CategoryClient
	Products   *clients.ProductClient
	Orders     *clients.OrderClient
	Statistics *clients.StatisticsClient
	Uploads    *clients.UploadClient
	Logger     *zap.Logger
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Statistics.Overview(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", stats)
}

// Categories

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in clients.CategoryInput
	if !decodeValid(w, r, &in) {
		return
	}
	cat, err := h.Categories.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusCreated, "Category created", cat)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var in clients.CategoryInput
	if !decodeValid(w, r, &in) {
		return
	}
	cat, err := h.Categories.Update(r.Context(), id, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "Category updated", cat)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "Category deleted", h.Categories.Delete)
}

// Products

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in clients.ProductInput
	if !decodeValid(w, r, &in) {
		return
	}
	p, err := h.Products.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusCreated, "Product created", p)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var in clients.ProductInput
	if !decodeValid(w, r, &in) {
		return
	}
	p, err := h.Products.Update(r.Context(), id, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "Product updated", p)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "Product deleted", h.Products.Delete)
}

// Orders

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParseOrders(r.URL.Query())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	page, err := h.Orders.List(r.Context(), q)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", page)
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", o)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var in dto.UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}
	if !in.Status.Valid() {
		WriteError(w, r, fmt.Errorf("%w: unknown order status %q", ErrBadRequest, in.Status))
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.Logger.Info("order status changed", zap.Int64("order_id", id), zap.String("status", string(in.Status)))
	WriteOK(w, r, http.StatusOK, "Order updated", o)
}

func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "Order deleted", h.Orders.Delete)
}

// Uploads

func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	files, closeAll, err := formFiles(w, r, "image")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	defer closeAll()
	if len(files) != 1 {
		WriteError(w, r, fmt.Errorf("%w: expected one file in field \"image\"", ErrBadRequest))
		return
	}
	res, err := h.Uploads.UploadImage(r.Context(), files[0])
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "Image uploaded", res)
}

func (h *AdminHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	files, closeAll, err := formFiles(w, r, "images")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	defer closeAll()
	if len(files) == 0 {
		WriteError(w, r, fmt.Errorf("%w: no files in field \"images\"", ErrBadRequest))
		return
	}
	res, err := h.Uploads.UploadImages(r.Context(), files)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "Images uploaded", res)
}

func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var in dto.DeleteImageRequest
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}
	if in.Path == "" {
		WriteError(w, r, fmt.Errorf("%w: path is required", ErrBadRequest))
		return
	}
	if err := h.Uploads.DeleteImage(r.Context(), in.Path); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "Image deleted", nil)
}

func (h *AdminHandler) delete(w http.ResponseWriter, r *http.Request, message string, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, message, nil)
}

func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(w, r, v); err != nil {
		WriteError(w, r, err)
		return false
	}
	if err := validation.Struct(v); err != nil {
		WriteError(w, r, err)
		return false
	}
	return true
}

// formFiles opens the files posted under field. The caller must call the
// returned func once done with them.
func formFiles(w http.ResponseWriter, r *http.Request, field string) ([]clients.File, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, func() {}, fmt.Errorf("%w: invalid multipart form: %v", ErrBadRequest, err)
	}

	var (
		opened []multipart.File
		files  []clients.File
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		_ = r.MultipartForm.RemoveAll()
	}
	for _, fh := range r.MultipartForm.File[field] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, clients.File{Name: fh.Filename, Content: f})
	}
	return files, closeAll, nil
}
