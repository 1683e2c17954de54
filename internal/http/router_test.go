package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apitest"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/diag"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/images"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/search"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

const testCookie = "sf_test"

type recordingPublisher struct {
	events.NopPublisher

	mu     sync.Mutex
	metas  []events.Metadata
	orders []clients.Order
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, meta events.Metadata, o clients.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metas = append(p.metas, meta)
	p.orders = append(p.orders, o)
	return nil
}

func (p *recordingPublisher) published() ([]events.Metadata, []clients.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Metadata(nil), p.metas...), append([]clients.Order(nil), p.orders...)
}

type fakeProber struct {
	rep diag.Report
	err error
}

func (f fakeProber) Report(context.Context) (diag.Report, error) { return f.rep, f.err }

type env struct {
	api    *apitest.Server
	srv    *httptest.Server
	store  *storage.Memory
	pub    *recordingPublisher
	client *http.Client
}

type envelope struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Data          json.RawMessage   `json:"data"`
	Error         string            `json:"error"`
	Fields        map[string]string `json:"fields"`
	Redirect      string            `json:"redirect"`
	CorrelationID string            `json:"correlationId"`
}

func newEnv(t *testing.T, opts ...func(*Deps)) *env {
	t.Helper()
	api := apitest.New(t)

	base, err := clients.NewClient("storefront-api", api.BaseURL(), clients.NewHTTPClient(5*time.Second))
	require.NoError(t, err)

	logger := zap.NewNop()
	apiClient := clients.NewAPI(base,
		clients.WithTokenSource(session.Tokens),
		clients.WithUnauthorizedHandler(session.EvictOnUnauthorized(logger)),
		clients.WithLogger(logger),
	)
	store := storage.NewMemory()
	products := clients.NewProductClient(apiClient)
	orders := clients.NewOrderClient(apiClient)
	pub := &recordingPublisher{}
	carts := cart.NewProvider(store, logger)

	d := Deps{
		Logger:     logger,
		Cfg:        config.Config{CORSAllowOrigins: []string{"*"}, SessionCookie: testCookie},
		Store:      store,
		Carts:      carts,
		Categories: clients.NewCategoryClient(apiClient),
		Products:   products,
		Orders:     orders,
		Auth:       clients.NewAuthClient(apiClient),
		Statistics: clients.NewStatisticsClient(apiClient),
		Uploads:    clients.NewUploadClient(apiClient),
		Checkout:   checkout.NewService(orders, pub, logger),
		Searcher:   search.NewSearcher(products),
		Images:     images.NewResolver(api.BaseURL()),
		HealthProbes: []clients.HealthProbe{
			{Name: "storefront-api", Client: base, Path: "/"},
		},
	}
	for _, opt := range opts {
		opt(&d)
	}

	srv := httptest.NewServer(NewRouter(d))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &env{api: api, srv: srv, store: store, pub: pub, client: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (e *env) do(t *testing.T, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req)
}

func (e *env) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (e *env) sessionID(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(e.srv.URL)
	require.NoError(t, err)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == testCookie {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func (e *env) login(t *testing.T, remember bool) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/admin/login", map[string]any{
		"email": apitest.AdminEmail, "password": apitest.AdminPassword, "rememberMe": remember,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealthRoute(t *testing.T) {
	e := newEnv(t)

	resp, err := e.client.Get(e.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"status": "ok", "service": "storefront-go"}, body)
	assert.Empty(t, resp.Cookies(), "health checks get no session")
}

func TestHealthUpstreams(t *testing.T) {
	e := newEnv(t)

	resp, err := e.client.Get(e.srv.URL + "/health/upstreams")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Status   string                 `json:"status"`
		Upstream []clients.HealthResult `json:"upstream"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Upstream, 1)
	assert.True(t, body.Upstream[0].OK)

	e.api.Close()
	resp2, err := e.client.Get(e.srv.URL + "/health/upstreams")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.NotEmpty(t, body.Upstream[0].Error)
}

func TestCorrelationIDEchoAndGeneration(t *testing.T) {
	router := NewRouter(Deps{Logger: zap.NewNop(), Cfg: config.Config{CORSAllowOrigins: []string{"*"}, SessionCookie: testCookie}})

	reqWith := httptest.NewRequest(http.MethodGet, "/health", nil)
	reqWith.Header.Set("X-Correlation-Id", "abc")
	rrWith := httptest.NewRecorder()
	router.ServeHTTP(rrWith, reqWith)
	assert.Equal(t, "abc", rrWith.Header().Get("X-Correlation-Id"))

	rrGen := httptest.NewRecorder()
	router.ServeHTTP(rrGen, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rrGen.Header().Get("X-Correlation-Id"))

	long := strings.Repeat("x", 200)
	reqLong := httptest.NewRequest(http.MethodGet, "/health", nil)
	reqLong.Header.Set("X-Correlation-Id", long)
	rrLong := httptest.NewRecorder()
	router.ServeHTTP(rrLong, reqLong)
	assert.NotEqual(t, long, rrLong.Header().Get("X-Correlation-Id"))
	assert.Len(t, rrLong.Header().Get("X-Correlation-Id"), 36)
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(Deps{Logger: zap.NewNop(), Cfg: config.Config{CORSAllowOrigins: []string{"https://shop.example.com"}, SessionCookie: testCookie}})

	req := httptest.NewRequest(http.MethodOptions, "/cart", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://shop.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/cart", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardNeverAllowsCredentials(t *testing.T) {
	router := NewRouter(Deps{Logger: zap.NewNop(), Cfg: config.Config{
		CORSAllowOrigins: []string{"*", "https://shop.example.com"},
		SessionCookie:    testCookie,
	}})

	preflight := func(origin string) http.Header {
		req := httptest.NewRequest(http.MethodOptions, "/cart", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNoContent, rr.Code)
		return rr.Header()
	}

	h := preflight("https://evil.example.com")
	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, h.Get("Access-Control-Allow-Credentials"))

	h = preflight("https://shop.example.com")
	assert.Equal(t, "https://shop.example.com", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
}

func TestDBTest(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/db-test", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, body.Success)

	e = newEnv(t, func(d *Deps) {
		d.Diagnostics = fakeProber{rep: diag.Report{Database: "shop", Collections: []string{"orders", "products"}}}
	})
	resp, err := e.client.Get(e.srv.URL + "/api/db-test")
	require.NoError(t, err)
	defer resp.Body.Close()
	var ok struct {
		Success     bool     `json:"success"`
		Database    string   `json:"database"`
		Collections []string `json:"collections"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	assert.True(t, ok.Success)
	assert.Equal(t, "shop", ok.Database)
	assert.Equal(t, []string{"orders", "products"}, ok.Collections)

	e = newEnv(t, func(d *Deps) { d.Diagnostics = fakeProber{err: errors.New("no reachable servers")} })
	resp, body = e.do(t, http.MethodGet, "/api/db-test", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Cannot connect to MongoDB", body.Message)
	assert.Equal(t, "no reachable servers", body.Error)
}

func TestListProductsResolvesImages(t *testing.T) {
	e := newEnv(t)
	e.api.SeedProducts(12, 0, "Camera")

	resp, body := e.do(t, http.MethodGet, "/products?page=2&pageSize=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodeData[struct {
		Data []struct {
			Name     string `json:"name"`
			ImageURL string `json:"image_url"`
		} `json:"data"`
		Pagination clients.Pagination `json:"pagination"`
	}](t, body)
	require.Len(t, page.Data, 5)
	assert.Equal(t, "Camera 6", page.Data[0].Name)
	assert.Equal(t, e.api.URL+"/uploads/camera-6.webp", page.Data[0].ImageURL)
	assert.Equal(t, 12, page.Pagination.TotalItems)
	assert.True(t, page.Pagination.HasNext)

	last, ok := e.api.LastRequest("/products")
	require.True(t, ok)
	assert.Equal(t, "5", last.Query.Get("pageSize"))
}

func TestListProductsRejectsInvalidQuery(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodGet, "/products?pageSize=500", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Empty(t, e.api.Requests())
}

func TestProductDetailWithRelated(t *testing.T) {
	e := newEnv(t)
	cat := e.api.AddCategory(clients.CategoryInput{Name: "Cameras", Slug: "cameras"})
	ps := e.api.SeedProducts(6, cat.ID, "Lens")

	resp, body := e.do(t, http.MethodGet, fmt.Sprintf("/products/%d", ps[0].ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	detail := decodeData[struct {
		Product struct {
			ID int64 `json:"id"`
		} `json:"product"`
		Related []struct {
			ID int64 `json:"id"`
		} `json:"related"`
	}](t, body)
	assert.Equal(t, ps[0].ID, detail.Product.ID)
	require.Len(t, detail.Related, 4)
	for _, r := range detail.Related {
		assert.NotEqual(t, ps[0].ID, r.ID)
	}

	resp, body = e.do(t, http.MethodGet, "/products/slug/lens-2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"slug":"lens-2"`)
}

func TestUnknownProductIs404(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodGet, "/products/999999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body.Message)
	assert.NotEmpty(t, body.CorrelationID)

	resp, _ = e.do(t, http.MethodGet, "/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	cat := e.api.AddCategory(clients.CategoryInput{Name: "Máy ảnh", Slug: "may-anh"})

	resp, body := e.do(t, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cats := decodeData[[]clients.Category](t, body)
	require.Len(t, cats, 1)
	assert.Equal(t, "Máy ảnh", cats[0].Name)

	resp, body = e.do(t, http.MethodGet, "/categories/slug/may-anh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cat.ID, decodeData[clients.Category](t, body).ID)
}

func TestSearch(t *testing.T) {
	e := newEnv(t)
	e.api.SeedProducts(12, 0, "Camera")
	e.api.SeedProducts(3, 0, "Tripod")

	resp, body := e.do(t, http.MethodGet, "/search?q=camera", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeData[search.Result](t, body)
	assert.Len(t, res.Products, 10)
	assert.True(t, res.HasMore)

	_, body = e.do(t, http.MethodGet, "/search?q=camera&page=2", nil)
	res = decodeData[search.Result](t, body)
	assert.Len(t, res.Products, 2)
	assert.False(t, res.HasMore)

	before := len(e.api.Requests())
	_, body = e.do(t, http.MethodGet, "/search?q=%20%20", nil)
	assert.Empty(t, decodeData[search.Result](t, body).Products)
	assert.Len(t, e.api.Requests(), before)

	resp, _ = e.do(t, http.MethodGet, "/search?q=camera&page=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartFlowPersistsPerSession(t *testing.T) {
	e := newEnv(t)
	ps := e.api.SeedProducts(2, 0, "Camera")

	resp, body := e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": ps[0].ID})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": ps[0].ID, "quantity": 2})
	_, body = e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": ps[1].ID})

	snap := decodeData[cart.Snapshot](t, body)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
	assert.Equal(t, 4, snap.TotalItems)
	assert.True(t, decimal.NewFromInt(50000).Equal(snap.TotalPrice))
	assert.Equal(t, e.api.URL+"/uploads/camera-1.webp", snap.Lines[0].Image)

	_, body = e.do(t, http.MethodPatch, fmt.Sprintf("/cart/items/%d", ps[0].ID), map[string]any{"quantity": 0})
	snap = decodeData[cart.Snapshot](t, body)
	assert.Equal(t, 1, snap.Lines[0].Quantity, "quantity below one clamps to one")

	_, body = e.do(t, http.MethodDelete, fmt.Sprintf("/cart/items/%d", ps[1].ID), nil)
	snap = decodeData[cart.Snapshot](t, body)
	require.Len(t, snap.Lines, 1)

	raw, err := storage.ForSession(e.store, e.sessionID(t)).Get(context.Background(), cart.StorageKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"name":"Camera 1"`)

	_, body = e.do(t, http.MethodDelete, "/cart", nil)
	assert.Empty(t, decodeData[cart.Snapshot](t, body).Lines)
	_, err = storage.ForSession(e.store, e.sessionID(t)).Get(context.Background(), cart.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCartsAreIsolatedBetweenSessions(t *testing.T) {
	e := newEnv(t)
	ps := e.api.SeedProducts(1, 0, "Camera")
	e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": ps[0].ID})

	other := &http.Client{Timeout: 5 * time.Second}
	resp, err := other.Get(e.srv.URL + "/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, decodeData[cart.Snapshot](t, body).Lines)
}

func TestForgedSessionCookieIsReplaced(t *testing.T) {
	e := newEnv(t)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/cart", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "x:admin"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var issued string
	for _, c := range resp.Cookies() {
		if c.Name == testCookie {
			issued = c.Value
		}
	}
	assert.NotEmpty(t, issued)
	assert.NotEqual(t, "x:admin", issued)
}

func TestCartRejects(t *testing.T) {
	e := newEnv(t)
	sold := e.api.AddProduct(clients.ProductInput{
		Name: "Sold out", Slug: "sold-out", Price: clients.AmountFromInt(1000), Status: clients.ProductOutOfStock,
	})

	resp, _ := e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": sold.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Fields, "productId")

	resp, _ = e.do(t, http.MethodPatch, "/cart/items/12345", map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/cart/items", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp, _ = e.send(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func checkoutForm() map[string]string {
	return map[string]string{
		"fullName": "Nguyen Van An",
		"phone":    "0912345678",
		"email":    "an@example.com",
		"address":  "1 Trang Tien, Hanoi",
	}
}

func TestCheckout(t *testing.T) {
	e := newEnv(t)
	ps := e.api.SeedProducts(2, 0, "Camera")

	resp, body := e.do(t, http.MethodPost, "/checkout", checkoutForm())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cart is empty", body.Message)

	e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": ps[0].ID, "quantity": 2})
	e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": ps[1].ID})

	bad := checkoutForm()
	bad["phone"] = "12345"
	resp, body = e.do(t, http.MethodPost, "/checkout", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Fields, "phone")

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/checkout", strings.NewReader(mustJSON(t, checkoutForm())))
	require.NoError(t, err)
	req.Header.Set("X-Correlation-Id", "checkout-1")
	resp, body = e.send(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)

	order := decodeData[clients.Order](t, body)
	assert.Equal(t, "COD", order.PaymentMethod)
	assert.True(t, decimal.NewFromInt(40000).Equal(order.Total.Decimal))

	_, body = e.do(t, http.MethodGet, "/cart", nil)
	assert.Empty(t, decodeData[cart.Snapshot](t, body).Lines)

	metas, published := e.pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, order.OrderNumber, published[0].OrderNumber)
	assert.Equal(t, "checkout-1", metas[0].CorrelationID)

	placed := e.api.Orders()
	require.Len(t, placed, 1)
	assert.Equal(t, "checkout-1", mustRequest(t, e.api, "/orders").Header.Get("X-Correlation-Id"))
}

func TestCheckoutUpstreamFailureKeepsCart(t *testing.T) {
	e := newEnv(t)
	ps := e.api.SeedProducts(1, 0, "Camera")
	e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": ps[0].ID})

	e.api.FailNext(http.StatusUnprocessableEntity, "Insufficient stock")
	resp, body := e.do(t, http.MethodPost, "/checkout", checkoutForm())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Insufficient stock", body.Message)

	_, body = e.do(t, http.MethodGet, "/cart", nil)
	assert.Len(t, decodeData[cart.Snapshot](t, body).Lines, 1)

	e.api.Close()
	resp, body = e.do(t, http.MethodPost, "/checkout", checkoutForm())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Network error", body.Message)
}

func TestAdminRequiresLogin(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, session.LoginPath, body.Redirect)

	resp, _ = e.do(t, http.MethodGet, "/admin/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, e.api.Requests())
}

func TestAdminLoginDashboardLogout(t *testing.T) {
	e := newEnv(t)
	e.login(t, true)

	resp, body := e.do(t, http.MethodGet, "/admin/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, apitest.AdminEmail, decodeData[clients.User](t, body).Email)
	assert.NotContains(t, string(body.Data), "token")

	resp, _ = e.do(t, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	last, ok := e.api.LastRequest("/statistics")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(last.Header.Get("Authorization"), "Bearer "))

	_, body = e.do(t, http.MethodPost, "/admin/logout", nil)
	assert.True(t, body.Success)

	resp, _ = e.do(t, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, body = e.do(t, http.MethodGet, "/admin/remembered", nil)
	rem := decodeData[struct {
		RememberMe bool   `json:"rememberMe"`
		Email      string `json:"email"`
	}](t, body)
	assert.True(t, rem.RememberMe)
	assert.Equal(t, apitest.AdminEmail, rem.Email)
}

func TestAdminLoginFailures(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/admin/login", map[string]any{"email": "nope", "password": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")

	resp, body = e.do(t, http.MethodPost, "/admin/login", map[string]any{"email": apitest.AdminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body.Message)

	_, body = e.do(t, http.MethodGet, "/admin/remembered", nil)
	assert.False(t, decodeData[struct {
		RememberMe bool `json:"rememberMe"`
	}](t, body).RememberMe)
}

func TestRevokedTokenEvictsSession(t *testing.T) {
	e := newEnv(t)
	e.login(t, false)

	e.api.RevokeTokens()
	resp, body := e.do(t, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, session.LoginPath, body.Redirect)

	resp, _ = e.do(t, http.MethodGet, "/admin/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminCatalogAndOrders(t *testing.T) {
	e := newEnv(t)
	e.login(t, false)

	resp, body := e.do(t, http.MethodPost, "/admin/categories", map[string]any{"name": "Lenses", "slug": "lenses"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	cat := decodeData[clients.Category](t, body)

	resp, body = e.do(t, http.MethodPost, "/admin/products", map[string]any{"name": "50mm", "slug": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Fields, "slug")
	assert.Contains(t, body.Fields, "status")

	resp, body = e.do(t, http.MethodPost, "/admin/products", map[string]any{
		"name": "50mm", "slug": "50mm", "price": 2500000, "stock": 3, "status": "active", "category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
	p := decodeData[clients.Product](t, body)

	resp, _ = e.do(t, http.MethodPut, fmt.Sprintf("/admin/products/%d", p.ID), map[string]any{
		"name": "50mm f/1.8", "slug": "50mm", "price": 2400000, "stock": 3, "status": "active",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	e.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": p.ID})
	_, body = e.do(t, http.MethodPost, "/checkout", checkoutForm())
	order := decodeData[clients.Order](t, body)

	resp, body = e.do(t, http.MethodGet, "/admin/orders?status=pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeData[clients.Page[clients.Order]](t, body).Data, 1)

	resp, _ = e.do(t, http.MethodGet, "/admin/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID), map[string]any{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", order.ID), map[string]any{"status": "shipping"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	assert.Equal(t, clients.StatusShipping, decodeData[clients.Order](t, body).Status)

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, fmt.Sprintf("/admin/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/products/%d", p.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", cat.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminUploads(t *testing.T) {
	e := newEnv(t)
	e.login(t, false)

	resp, body := e.send(t, multipartRequest(t, e.srv.URL+"/admin/upload/image", "image", "front.webp"))
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	uploaded := decodeData[clients.UploadResult](t, body)
	assert.NotEmpty(t, uploaded.URL)

	resp, body = e.send(t, multipartRequest(t, e.srv.URL+"/admin/upload/images", "images", "1.webp", "2.webp"))
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	assert.Equal(t, 2, decodeData[clients.UploadResult](t, body).Count)

	before := len(e.api.Requests())
	resp, _ = e.send(t, multipartRequest(t, e.srv.URL+"/admin/upload/images", "images", "1", "2", "3", "4", "5"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, e.api.Requests(), before, "too many images never reach the API")

	resp, _ = e.do(t, http.MethodDelete, "/admin/upload/image", map[string]string{"path": uploaded.URL})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	remaining := e.api.Uploads()
	assert.Len(t, remaining, 2)
	assert.NotContains(t, remaining, uploaded.URL)
}

func multipartRequest(t *testing.T, target, field string, names ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, n := range names {
		part, err := w.CreateFormFile(field, n)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, target, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func mustRequest(t *testing.T, api *apitest.Server, suffix string) apitest.RecordedRequest {
	t.Helper()
	r, ok := api.LastRequest(suffix)
	require.True(t, ok, "no request to %s", suffix)
	return r
}
