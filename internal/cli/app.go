package cli

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/images"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// app is everything one command run needs.
type app struct {
	opts    *RootOptions
	out     *OutputFormatter
	logger  *zap.Logger
	store   storage.Store
	session *session.Session
	images  *images.Resolver

	categories *clients.CategoryClient
	products   *clients.ProductClient
	orders     *clients.OrderClient
	auth       *clients.AuthClient
	statistics *clients.StatisticsClient
	uploads    *clients.UploadClient

	closers []func() error
}

// runner adapts a command body to cobra's RunE.
func runner(opts *RootOptions, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, a, err := newApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, args)
	}
}

// newApp wires one command run. The returned ctx carries a fresh
// correlation id and the local session, which the API client reads its
// token from.
func newApp(cmd *cobra.Command, opts *RootOptions) (context.Context, *app, error) {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "logger", err)
	}

	a := &app{
		opts: opts,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		logger: logger,
		images: images.NewResolver(opts.APIURL),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = middleware.WithCorrelationID(ctx, uuid.NewString())

	driver := storage.DriverSQLite
	if opts.StorePath == "" {
		driver = storage.DriverMemory
	}
	store, closeStore, err := storage.Open(ctx, storage.Options{Driver: driver, DSN: opts.StorePath, RunMigrations: true}, logger)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open local store", err)
	}
	a.store = store
	a.closers = append(a.closers, closeStore)
	a.session = session.New("", store)
	ctx = session.NewContext(ctx, a.session)

	base, err := clients.NewClient("storefront-api", opts.APIURL, clients.NewHTTPClient(opts.Timeout))
	if err != nil {
		a.close()
		return nil, nil, WrapExitError(ExitCommandError, "invalid --api", err)
	}
	api := clients.NewAPI(base,
		clients.WithTokenSource(session.Tokens),
		clients.WithUnauthorizedHandler(session.EvictOnUnauthorized(logger)),
		clients.WithLogger(logger),
	)
	a.categories = clients.NewCategoryClient(api)
	a.products = clients.NewProductClient(api)
	a.orders = clients.NewOrderClient(api)
	a.auth = clients.NewAuthClient(api)
	a.statistics = clients.NewStatisticsClient(api)
	a.uploads = clients.NewUploadClient(api)

	a.out.VerboseLog("api %s, store %q, correlation id %s", opts.APIURL, opts.StorePath, middleware.GetCorrelationID(ctx))
	return ctx, a, nil
}

// cart restores the local cart and keeps the mirror in sync.
func (a *app) cart(ctx context.Context) *cart.Manager {
	m := cart.Restore(ctx, a.store, a.logger)
	cart.NewPersister(a.store, a.logger).Attach(m)
	return m
}

func (a *app) checkout() *checkout.Service {
	var pub events.Publisher = events.NopPublisher{}
	if a.opts.RabbitMQURL != "" {
		p, err := events.Dial(a.opts.RabbitMQURL, a.logger)
		if err != nil {
			a.logger.Warn("rabbitmq unavailable, OrderPlaced will not be published", zap.Error(err))
		} else {
			pub = p
			a.closers = append(a.closers, p.Close)
		}
	}
	return checkout.NewService(a.orders, pub, a.logger)
}

// requireLogin fails without an API call when no token is cached.
func (a *app) requireLogin(ctx context.Context) error {
	if !a.session.IsAuthenticated(ctx) {
		return clients.ErrUnauthorized
	}
	return nil
}

func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("close", zap.Error(err))
	}
	_ = a.logger.Sync()
}
