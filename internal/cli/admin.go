package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer the shop",
		Long: `Administer the shop.

Run "shopctl admin login" first. The token is cached in the --store file
and dropped as soon as the API rejects it.`,
	}
	cmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newDashboardCommand(opts),
		newAdminCategoriesCommand(opts),
		newAdminProductsCommand(opts),
		newAdminOrdersCommand(opts),
		newUploadCommand(opts),
	)
	return cmd
}

// adminRunner is runner for commands that need a cached token.
func adminRunner(opts *RootOptions, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return runner(opts, func(ctx context.Context, a *app, args []string) error {
		if err := a.requireLogin(ctx); err != nil {
			return err
		}
		return fn(ctx, a, args)
	})
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var (
		in       clients.LoginRequest
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the token",
		Long: `Sign in and cache the token.

With --remember the email is kept and used when --email is omitted next
time. The password is never stored.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = runner(opts, func(ctx context.Context, a *app, _ []string) error {
		if in.Email == "" {
			email, ok, err := a.session.RememberedEmail(ctx)
			if err != nil {
				return err
			}
			if ok {
				in.Email = email
				remember = remember || !cmd.Flags().Changed("remember")
			}
		}
		res, err := session.Login(ctx, a.auth, a.session, in, remember)
		if err != nil {
			return err
		}
		return a.out.Success(res.User, func(w io.Writer) error {
			fmt.Fprint(w, "logged in as ")
			return renderUser(w, res.User)
		})
	})
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Password, "password", os.Getenv("SHOPCTL_PASSWORD"), "admin password (env SHOPCTL_PASSWORD)")
	cmd.Flags().BoolVar(&remember, "remember", false, "remember the email for the next login")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the cached token",
		Args:  cobra.NoArgs,
		RunE: runner(opts, func(ctx context.Context, a *app, _ []string) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			return a.out.Success(map[string]bool{"loggedOut": true}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "logged out")
				return err
			})
		}),
	}
}

func newWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin",
		Args:  cobra.NoArgs,
		RunE: adminRunner(opts, func(ctx context.Context, a *app, _ []string) error {
			u, err := a.session.User(ctx)
			if err != nil {
				return err
			}
			if u == nil {
				return clients.ErrUnauthorized
			}
			return a.out.Success(u, func(w io.Writer) error { return renderUser(w, *u) })
		}),
	}
}

func newDashboardCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show shop statistics",
		Args:  cobra.NoArgs,
		RunE: adminRunner(opts, func(ctx context.Context, a *app, _ []string) error {
			stats, err := a.statistics.Overview(ctx)
			if err != nil {
				return err
			}
			return a.out.Success(stats, func(w io.Writer) error { return renderDashboard(w, stats) })
		}),
	}
}

func newAdminCategoriesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Create, update and delete categories",
	}

	var in clients.CategoryInput
	bind := func(fs *pflag.FlagSet) {
		fs.StringVar(&in.Name, "name", "", "category name")
		fs.StringVar(&in.Slug, "slug", "", "URL slug")
		fs.StringVar(&in.Description, "description", "", "description")
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: adminRunner(opts, func(ctx context.Context, a *app, _ []string) error {
			if err := validation.Struct(in); err != nil {
				return err
			}
			c, err := a.categories.Create(ctx, in)
			if err != nil {
				return err
			}
			return a.out.Success(c, func(w io.Writer) error { return renderCategory(w, c) })
		}),
	}
	bind(create.Flags())

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a category",
		Args:  cobra.ExactArgs(1),
	}
	update.RunE = adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
		id, err := argID(args[0])
		if err != nil {
			return err
		}
		cur, err := a.categories.Get(ctx, id)
		if err != nil {
			return err
		}
		next := clients.CategoryInput{Name: cur.Name, Slug: cur.Slug, Description: cur.Description}
		fs := update.Flags()
		if fs.Changed("name") {
			next.Name = in.Name
		}
		if fs.Changed("slug") {
			next.Slug = in.Slug
		}
		if fs.Changed("description") {
			next.Description = in.Description
		}
		if err := validation.Struct(next); err != nil {
			return err
		}
		c, err := a.categories.Update(ctx, id, next)
		if err != nil {
			return err
		}
		return a.out.Success(c, func(w io.Writer) error { return renderCategory(w, c) })
	})
	bind(update.Flags())

	cmd.AddCommand(create, update, deleteCommand(opts, "category", func(a *app) func(context.Context, int64) error {
		return a.categories.Delete
	}))
	return cmd
}

// productFlags holds the product fields as typed on the command line.
// Prices stay strings until parsed so bad input is reported per field.
type productFlags struct {
	in            clients.ProductInput
	price         string
	originalPrice string
	category      int64
}

func (f *productFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Name, "name", "", "product name")
	fs.StringVar(&f.in.Slug, "slug", "", "URL slug")
	fs.StringVar(&f.in.Description, "description", "", "description")
	fs.StringVar(&f.price, "price", "", "price in dong")
	fs.StringVar(&f.originalPrice, "original-price", "", "price before discount, in dong")
	fs.Int64Var(&f.category, "category", 0, "category id")
	fs.IntVar(&f.in.Stock, "stock", 0, "units in stock")
	fs.StringVar(&f.in.Status, "status", clients.ProductActive, "active, out_of_stock or inactive")
	fs.StringVar(&f.in.Image, "image", "", "main image path, as returned by upload")
	fs.StringVar(&f.in.Images, "images", "", "gallery, a JSON array of image paths")
}

// apply copies the changed flags onto base. Every flag counts as changed
// when all is set.
func (f *productFlags) apply(fs *pflag.FlagSet, base clients.ProductInput, all bool) (clients.ProductInput, error) {
	changed := func(name string) bool { return all || fs.Changed(name) }
	out := base
	if changed("name") {
		out.Name = f.in.Name
	}
	if changed("slug") {
		out.Slug = f.in.Slug
	}
	if changed("description") {
		out.Description = f.in.Description
	}
	if changed("price") {
		d, err := parseAmount("price", f.price)
		if err != nil {
			return out, err
		}
		out.Price = clients.NewAmount(d)
	}
	if fs.Changed("original-price") {
		if f.originalPrice == "" {
			out.OriginalPrice = nil
		} else {
			d, err := parseAmount("original-price", f.originalPrice)
			if err != nil {
				return out, err
			}
			a := clients.NewAmount(d)
			out.OriginalPrice = &a
		}
	}
	if fs.Changed("category") {
		if f.category > 0 {
			out.CategoryID = query.Int64(f.category)
		} else {
			out.CategoryID = nil
		}
	}
	if changed("stock") {
		out.Stock = f.in.Stock
	}
	if changed("status") {
		out.Status = f.in.Status
	}
	if changed("image") {
		out.Image = f.in.Image
	}
	if changed("images") {
		out.Images = f.in.Images
	}
	return out, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, &validation.Error{Fields: map[string]string{field: "must be a non-negative number"}}
	}
	return d, nil
}

func inputFromProduct(p clients.Product) clients.ProductInput {
	return clients.ProductInput{
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		CategoryID:    p.CategoryID,
		Stock:         p.Stock,
		Status:        p.Status,
		Image:         p.Image,
		Images:        p.Images,
	}
}

func newAdminProductsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Create, update and delete products",
	}

	var f productFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
	}
	create.RunE = adminRunner(opts, func(ctx context.Context, a *app, _ []string) error {
		in, err := f.apply(create.Flags(), clients.ProductInput{}, true)
		if err != nil {
			return err
		}
		if err := validation.Struct(in); err != nil {
			return err
		}
		p, err := a.products.Create(ctx, in)
		if err != nil {
			return err
		}
		return a.out.Success(p, func(w io.Writer) error { return renderProduct(w, p, nil, a.images) })
	})
	f.bind(create.Flags())

	var uf productFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a product",
		Args:  cobra.ExactArgs(1),
	}
	update.RunE = adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
		id, err := argID(args[0])
		if err != nil {
			return err
		}
		cur, err := a.products.Get(ctx, id)
		if err != nil {
			return err
		}
		in, err := uf.apply(update.Flags(), inputFromProduct(cur), false)
		if err != nil {
			return err
		}
		if err := validation.Struct(in); err != nil {
			return err
		}
		p, err := a.products.Update(ctx, id, in)
		if err != nil {
			return err
		}
		return a.out.Success(p, func(w io.Writer) error { return renderProduct(w, p, nil, a.images) })
	})
	uf.bind(update.Flags())

	cmd.AddCommand(create, update, deleteCommand(opts, "product", func(a *app) func(context.Context, int64) error {
		return a.products.Delete
	}))
	return cmd
}

func newAdminOrdersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Review and process orders",
	}

	var (
		page, pageSize int
		status         string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: adminRunner(opts, func(ctx context.Context, a *app, _ []string) error {
			v := url.Values{}
			v.Set("page", strconv.Itoa(page))
			v.Set("pageSize", strconv.Itoa(pageSize))
			if status != "" {
				v.Set("status", status)
			}
			q, err := query.ParseOrders(v)
			if err != nil {
				return err
			}
			orders, err := a.orders.List(ctx, q)
			if err != nil {
				return err
			}
			return a.out.Success(orders, func(w io.Writer) error { return renderOrders(w, orders) })
		}),
	}
	list.Flags().IntVar(&page, "page", query.DefaultPage, "page number")
	list.Flags().IntVar(&pageSize, "page-size", query.DefaultPageSize, "orders per page (max 100)")
	list.Flags().StringVar(&status, "status", "", "only orders with this status")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one order with its items",
		Args:  cobra.ExactArgs(1),
		RunE: adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			o, err := a.orders.Get(ctx, id)
			if err != nil {
				return err
			}
			return a.out.Success(o, func(w io.Writer) error { return renderOrder(w, o) })
		}),
	}

	setStatus := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an order to a new status",
		Long: `Move an order to a new status: pending, processing, shipping,
completed or cancelled.`,
		Args: cobra.ExactArgs(2),
		RunE: adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			st := clients.Status(args[1])
			if !st.Valid() {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid status %q", args[1]))
			}
			o, err := a.orders.UpdateStatus(ctx, id, st)
			if err != nil {
				return err
			}
			return a.out.Success(o, func(w io.Writer) error { return renderOrder(w, o) })
		}),
	}

	cmd.AddCommand(list, get, setStatus, deleteCommand(opts, "order", func(a *app) func(context.Context, int64) error {
		return a.orders.Delete
	}))
	return cmd
}

func newUploadCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Manage product images",
	}

	image := &cobra.Command{
		Use:   "image <file>",
		Short: "Upload one image",
		Args:  cobra.ExactArgs(1),
		RunE: adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
			files, closeFiles, err := openFiles(args)
			if err != nil {
				return err
			}
			defer closeFiles()
			res, err := a.uploads.UploadImage(ctx, files[0])
			if err != nil {
				return err
			}
			return a.out.Success(res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, res.URL)
				return err
			})
		}),
	}

	images := &cobra.Command{
		Use:   "images <file>...",
		Short: fmt.Sprintf("Upload up to %d images at once", clients.MaxUploadImages),
		Args:  cobra.MinimumNArgs(1),
		RunE: adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
			if len(args) > clients.MaxUploadImages {
				return clients.ErrTooManyImages
			}
			files, closeFiles, err := openFiles(args)
			if err != nil {
				return err
			}
			defer closeFiles()
			res, err := a.uploads.UploadImages(ctx, files)
			if err != nil {
				return err
			}
			return a.out.Success(res, func(w io.Writer) error {
				for _, u := range res.URLs {
					fmt.Fprintln(w, u)
				}
				if res.JSON == "" {
					return nil
				}
				_, err := fmt.Fprintf(w, "gallery: %s\n", res.JSON)
				return err
			})
		}),
	}

	del := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete an uploaded image",
		Args:  cobra.ExactArgs(1),
		RunE: adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
			if err := a.uploads.DeleteImage(ctx, args[0]); err != nil {
				return err
			}
			return a.out.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted %s\n", args[0])
				return err
			})
		}),
	}

	cmd.AddCommand(image, images, del)
	return cmd
}

// deleteCommand builds "delete <id>" for the named resource.
func deleteCommand(opts *RootOptions, noun string, del func(a *app) func(context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: adminRunner(opts, func(ctx context.Context, a *app, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			if err := del(a)(ctx, id); err != nil {
				return err
			}
			return a.out.Success(map[string]int64{"deleted": id}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted %s %d\n", noun, id)
				return err
			})
		}),
	}
}

// openFiles opens paths for upload. The returned func closes them all.
func openFiles(paths []string) ([]clients.File, func(), error) {
	var (
		files   []clients.File
		handles []*os.File
	)
	closeAll := func() {
		for _, h := range handles {
			_ = h.Close()
		}
	}
	for _, p := range paths {
		h, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, WrapExitError(ExitCommandError, "open "+p, errors.Unwrap(err))
		}
		handles = append(handles, h)
		files = append(files, clients.File{Name: filepath.Base(p), Content: h})
	}
	return files, closeAll, nil
}
