package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/diag"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/handlers"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/images"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/search"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// requestTimeout bounds one storefront request, a few upstream calls deep.
const requestTimeout = 30 * time.Second

type Deps struct {
	Logger *zap.Logger
	Cfg    config.Config

	// Store holds every session's cart, token and remember-me state.
	Store storage.Store
	Carts *cart.Provider

	Categories *clients.CategoryClient
	Products   *clients.ProductClient
	Orders     *clients.OrderClient
	Auth       *clients.AuthClient
	Statistics *clients.StatisticsClient
	Uploads    *clients.UploadClient

	Checkout *checkout.Service
	Searcher *search.Searcher
	Images   *images.Resolver

	// Diagnostics is nil when no MongoDB is configured.
	Diagnostics  diag.Prober
	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.Recover(d.Logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Timeout(requestTimeout))

	// Health
	health := &handlers.HealthHandler{Probes: d.HealthProbes, DB: d.Diagnostics, Logger: d.Logger}
	r.Get("/health", health.Storefront)
	r.Get("/health/upstreams", health.Upstreams)
	r.Get("/api/db-test", health.DBTest)

	r.Group(func(r chi.Router) {
		r.Use(handlers.Session(d.Cfg.SessionCookie, d.Store))

		// Catalog
		cat := handlers.NewCatalogHandler(d.Categories, d.Products, d.Searcher, d.Images, d.Logger)
		r.Get("/categories", cat.ListCategories)
		r.Get("/categories/{id}", cat.GetCategory)
		r.Get("/categories/slug/{slug}", cat.CategoryBySlug)
		r.Get("/products", cat.ListProducts)
		r.Get("/products/{id}", cat.GetProduct)
		r.Get("/products/slug/{slug}", cat.ProductBySlug)
		r.Get("/search", cat.Search)

		// Cart
		cartH := handlers.NewCartHandler(d.Carts, d.Products, d.Images)
		r.Get("/cart", cartH.Get)
		r.Post("/cart/items", cartH.AddItem)
		r.Patch("/cart/items/{id}", cartH.UpdateItem)
		r.Delete("/cart/items/{id}", cartH.RemoveItem)
		r.Delete("/cart", cartH.Clear)

		// Checkout
		co := handlers.NewCheckoutHandler(d.Checkout, d.Carts)
		r.Post("/checkout", co.PlaceOrder)

		// Admin
		auth := handlers.NewAuthHandler(d.Auth, d.Logger)
		r.Post("/admin/login", auth.Login)
		r.Post("/admin/logout", auth.Logout)
		r.Get("/admin/me", auth.Me)
		r.Get("/admin/remembered", auth.Remembered)

		admin := &handlers.AdminHandler{
			Categories: d.Categories,
			Products:   d.Products,
			Orders:     d.Orders,
			Statistics: d.Statistics,
			Uploads:    d.Uploads,
			Logger:     d.Logger,
		}
		r.Route("/admin", func(r chi.Router) {
			r.Use(handlers.RequireAuth)

			r.Get("/dashboard", admin.Dashboard)

			r.Post("/categories", admin.CreateCategory)
			r.Put("/categories/{id}", admin.UpdateCategory)
			r.Delete("/categories/{id}", admin.DeleteCategory)

			r.Post("/products", admin.CreateProduct)
			r.Put("/products/{id}", admin.UpdateProduct)
			r.Delete("/products/{id}", admin.DeleteProduct)

			r.Get("/orders", admin.ListOrders)
			r.Get("/orders/{id}", admin.GetOrder)
			r.Patch("/orders/{id}/status", admin.UpdateOrderStatus)
			r.Delete("/orders/{id}", admin.DeleteOrder)

			r.Post("/upload/image", admin.UploadImage)
			r.Post("/upload/images", admin.UploadImages)
			r.Delete("/upload/image", admin.DeleteImage)
		})
	})

	return r
}
