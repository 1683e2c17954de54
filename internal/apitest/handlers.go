package apitest

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in clients.LoginRequest
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[in.Email]
	if !ok || u.password != in.Password {
		writeFail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token := uuid.NewString()
	s.tokens[token] = u.user
	writeOK(w, http.StatusOK, "Login successful", clients.AuthResult{User: u.user, Token: token})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in clients.RegisterRequest
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[in.Email]; exists {
		writeFail(w, http.StatusConflict, "Email already registered")
		return
	}
	now := time.Now().UTC()
	u := clients.User{ID: s.newID(), Name: in.Name, Email: in.Email, Role: "customer", CreatedAt: now, UpdatedAt: now}
	s.users[in.Email] = registered{user: u, password: in.Password}
	token := uuid.NewString()
	s.tokens[token] = u
	writeOK(w, http.StatusCreated, "Registration successful", clients.AuthResult{User: u, Token: token})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]clients.Category, len(s.categories))
	for i, c := range s.categories {
		c.ProductCount = s.countProductsLocked(c.ID)
		out[i] = c
	}
	writeOK(w, http.StatusOK, "Categories retrieved", out)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s.withCategory(w, func(c clients.Category) bool { return c.ID == id })
}

func (s *Server) getCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(r)
	s.withCategory(w, func(c clients.Category) bool { return c.Slug == slug })
}

func (s *Server) withCategory(w http.ResponseWriter, match func(clients.Category) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if match(c) {
			c.ProductCount = s.countProductsLocked(c.ID)
			writeOK(w, http.StatusOK, "Category retrieved", c)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Category not found")
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var in clients.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" {
		writeFail(w, http.StatusBadRequest, "Name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.addCategoryLocked(in)
	writeOK(w, http.StatusCreated, "Category created", c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in clients.CategoryInput
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			c := &s.categories[i]
			c.Name, c.Slug, c.Description = in.Name, in.Slug, in.Description
			c.UpdatedAt = time.Now().UTC()
			writeOK(w, http.StatusOK, "Category updated", *c)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Category not found")
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			writeOK(w, http.StatusOK, "Category deleted", nil)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Category not found")
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	s.mu.Lock()
	matched := make([]clients.Product, 0, len(s.products))
	for _, p := range s.products {
		if !productMatches(p, q) {
			continue
		}
		matched = append(matched, s.withCategoryLocked(p))
	}
	s.mu.Unlock()

	// ASC lists the newest first, DESC the oldest first.
	switch strings.ToUpper(q.Get("sortBy")) {
	case "ASC":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	case "DESC":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	}

	writeOK(w, http.StatusOK, "Products retrieved", Paginate(matched, page, pageSize))
}

func productMatches(p clients.Product, q map[string][]string) bool {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	if v := get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || p.CategoryID == nil || *p.CategoryID != id {
			return false
		}
	}
	if v := get("status"); v != "" && p.Status != v {
		return false
	}
	if v := get("search"); v != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(v)) {
		return false
	}
	return true
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s.withProduct(w, func(p clients.Product) bool { return p.ID == id })
}

func (s *Server) getProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(r)
	s.withProduct(w, func(p clients.Product) bool { return p.Slug == slug })
}

func (s *Server) withProduct(w http.ResponseWriter, match func(clients.Product) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if match(p) {
			writeOK(w, http.StatusOK, "Product retrieved", s.withCategoryLocked(p))
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Product not found")
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in clients.ProductInput
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" {
		writeFail(w, http.StatusBadRequest, "Name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeOK(w, http.StatusCreated, "Product created", s.addProductLocked(in))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in clients.ProductInput
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := productFromInput(in)
			p.ID, p.CreatedAt = id, s.products[i].CreatedAt
			p.UpdatedAt = time.Now().UTC()
			s.products[i] = p
			writeOK(w, http.StatusOK, "Product updated", p)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Product not found")
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			writeOK(w, http.StatusOK, "Product deleted", nil)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Product not found")
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var in clients.CreateOrderRequest
	if !decode(w, r, &in) {
		return
	}
	if len(in.Items) == 0 {
		writeFail(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}
	if in.CustomerName == "" || in.CustomerPhone == "" || in.CustomerAddress == "" {
		writeFail(w, http.StatusBadRequest, "Customer name, phone and address are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	now := time.Now().UTC()
	o := clients.Order{
		ID:              id,
		OrderNumber:     fmt.Sprintf("ORD-%06d", id),
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		CustomerAddress: in.CustomerAddress,
		Status:          clients.StatusPending,
		PaymentMethod:   in.PaymentMethod,
		Note:            in.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	total := decimal.Zero
	for i, it := range in.Items {
		sub := it.ProductPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(sub)
		subAmount := clients.NewAmount(sub)
		o.Items = append(o.Items, clients.OrderItem{
			ID:           int64(i + 1),
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			Subtotal:     &subAmount,
		})
	}
	o.Total = clients.NewAmount(total)
	s.orders = append(s.orders, o)

	writeOK(w, http.StatusCreated, "Order created", o)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	status := q.Get("status")

	s.mu.Lock()
	matched := make([]clients.Order, 0, len(s.orders))
	for i := len(s.orders) - 1; i >= 0; i-- {
		if status == "" || string(s.orders[i].Status) == status {
			matched = append(matched, s.orders[i])
		}
	}
	s.mu.Unlock()

	writeOK(w, http.StatusOK, "Orders retrieved", Paginate(matched, page, pageSize))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			writeOK(w, http.StatusOK, "Order retrieved", o)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Order not found")
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in struct {
		Status clients.Status `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	if !in.Status.Valid() {
		writeFail(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = in.Status
			s.orders[i].UpdatedAt = time.Now().UTC()
			writeOK(w, http.StatusOK, "Order status updated", s.orders[i])
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Order not found")
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			writeOK(w, http.StatusOK, "Order deleted", nil)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Order not found")
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := clients.Statistics{
		TotalOrders:    len(s.orders),
		TotalProducts:  len(s.products),
		TotalCustomers: len(s.users) - 1,
	}

	revenue := decimal.Zero
	byStatus := map[clients.Status]int{}
	byMonth := map[string]decimal.Decimal{}
	var months []string
	for _, o := range s.orders {
		byStatus[o.Status]++
		if o.Status == clients.StatusCancelled {
			continue
		}
		revenue = revenue.Add(o.Total.Decimal)
		m := o.CreatedAt.Format("2006-01")
		if _, seen := byMonth[m]; !seen {
			months = append(months, m)
		}
		byMonth[m] = byMonth[m].Add(o.Total.Decimal)
	}
	stats.TotalRevenue = clients.NewAmount(revenue)

	for _, st := range clients.Statuses {
		if n := byStatus[st]; n > 0 {
			stats.OrdersByStatus = append(stats.OrdersByStatus, clients.OrderStatusCount{Status: string(st), Count: n})
		}
	}
	for _, m := range months {
		stats.RevenueByMonth = append(stats.RevenueByMonth, clients.MonthlyRevenue{Month: m, Revenue: clients.NewAmount(byMonth[m])})
	}
	for i := len(s.orders) - 1; i >= 0 && len(stats.RecentOrders) < 5; i-- {
		o := s.orders[i]
		stats.RecentOrders = append(stats.RecentOrders, clients.RecentOrder{
			ID: o.ID, OrderNumber: o.OrderNumber, CustomerName: o.CustomerName,
			Total: o.Total, Status: o.Status, CreatedAt: o.CreatedAt,
		})
	}

	writeOK(w, http.StatusOK, "Statistics retrieved", stats)
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) != 1 {
		writeFail(w, http.StatusBadRequest, "No image provided")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.storeUploadLocked(files[0].Filename)
	writeOK(w, http.StatusOK, "Image uploaded", clients.UploadResult{URL: u})
}

func (s *Server) uploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeFail(w, http.StatusBadRequest, "No images provided")
		return
	}
	if len(files) > clients.MaxUploadImages {
		writeFail(w, http.StatusBadRequest, "Maximum 4 images allowed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for _, f := range files {
		urls = append(urls, s.storeUploadLocked(f.Filename))
	}
	writeOK(w, http.StatusOK, "Images uploaded", clients.UploadResult{URLs: urls, Count: len(urls)})
}

func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.uploads {
		if u == in.Path {
			s.uploads = append(s.uploads[:i], s.uploads[i+1:]...)
			writeOK(w, http.StatusOK, "Image deleted", nil)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Image not found")
}

func (s *Server) storeUploadLocked(name string) string {
	u := fmt.Sprintf("/uploads/%d-%s", s.newID(), path.Base(name))
	s.uploads = append(s.uploads, u)
	return u
}

func (s *Server) countProductsLocked(categoryID int64) int {
	n := 0
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (s *Server) withCategoryLocked(p clients.Product) clients.Product {
	if p.CategoryID == nil {
		return p
	}
	for _, c := range s.categories {
		if c.ID == *p.CategoryID {
			c := c
			p.Category = &c
			break
		}
	}
	return p
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// slugParam undoes the escaping chi leaves in place when the request carried
// an encoded path.
func slugParam(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	if slug, err := url.PathUnescape(raw); err == nil {
		return slug
	}
	return raw
}
