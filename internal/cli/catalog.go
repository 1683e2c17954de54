package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/search"
)

// relatedProducts is how many related products "products get" shows.
const relatedProducts = 4

func NewCategoriesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse product categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: runner(opts, func(ctx context.Context, a *app, _ []string) error {
			cats, err := a.categories.List(ctx)
			if err != nil {
				return err
			}
			return a.out.Success(cats, func(w io.Writer) error { return renderCategories(w, cats) })
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id|slug>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: runner(opts, func(ctx context.Context, a *app, args []string) error {
			var (
				c   clients.Category
				err error
			)
			if id, ok := parseID(args[0]); ok {
				c, err = a.categories.Get(ctx, id)
			} else {
				c, err = a.categories.GetBySlug(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return a.out.Success(c, func(w io.Writer) error { return renderCategory(w, c) })
		}),
	})

	return cmd
}

type productListFlags struct {
	page     int
	pageSize int
	category int64
	status   string
	search   string
	sort     string
}

// query builds the product query through the same parser the storefront
// uses for its query string, so both reject the same input.
func (f productListFlags) query(cmd *cobra.Command) (query.Products, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.page))
	v.Set("pageSize", strconv.Itoa(f.pageSize))
	if cmd.Flags().Changed("category") {
		v.Set("category_id", strconv.FormatInt(f.category, 10))
	}
	if f.status != "" {
		v.Set("status", f.status)
	}
	if f.search != "" {
		v.Set("search", f.search)
	}
	if f.sort != "" {
		v.Set("sortBy", f.sort)
	}
	return query.ParseProducts(v)
}

func NewProductsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
	}

	var f productListFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List products, one page at a time",
		Args:  cobra.NoArgs,
	}
	list.RunE = runner(opts, func(ctx context.Context, a *app, _ []string) error {
		q, err := f.query(list)
		if err != nil {
			return err
		}
		page, err := a.products.List(ctx, q)
		if err != nil {
			return err
		}
		return a.out.Success(page, func(w io.Writer) error { return renderProducts(w, page) })
	})
	list.Flags().IntVar(&f.page, "page", query.DefaultPage, "page number")
	list.Flags().IntVar(&f.pageSize, "page-size", query.DefaultPageSize, "products per page (max 100)")
	list.Flags().Int64Var(&f.category, "category", 0, "only products in this category id")
	list.Flags().StringVar(&f.status, "status", "", "only products with this status (active, out_of_stock, inactive)")
	list.Flags().StringVar(&f.search, "search", "", "only products matching this text")
	list.Flags().StringVar(&f.sort, "sort", "", "sort order (ASC or DESC)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id|slug>",
		Short: "Show one product and related products",
		Args:  cobra.ExactArgs(1),
		RunE: runner(opts, func(ctx context.Context, a *app, args []string) error {
			var (
				p   clients.Product
				err error
			)
			if id, ok := parseID(args[0]); ok {
				p, err = a.products.Get(ctx, id)
			} else {
				p, err = a.products.GetBySlug(ctx, args[0])
			}
			if err != nil {
				return err
			}
			related, err := a.products.Related(ctx, p, relatedProducts)
			if err != nil {
				a.out.VerboseLog("related products: %v", err)
				related = nil
			}
			data := struct {
				Product clients.Product   `json:"product"`
				Related []clients.Product `json:"related"`
			}{p, related}
			if data.Related == nil {
				data.Related = []clients.Product{}
			}
			return a.out.Success(data, func(w io.Writer) error { return renderProduct(w, p, related, a.images) })
		}),
	})

	return cmd
}

func NewSearchCommand(opts *RootOptions) *cobra.Command {
	var (
		page        int
		interactive bool
		debounce    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search products by name",
		Long: `Search products by name.

With --interactive, every line read from stdin replaces the search text.
Results are printed once input has paused for --debounce, and a lookup
still in flight is abandoned when a newer line arrives.`,
		Args: cobra.MaximumNArgs(1),
	}
	cmd.RunE = runner(opts, func(ctx context.Context, a *app, args []string) error {
		searcher := search.NewSearcher(a.products)
		if interactive {
			return interactiveSearch(ctx, a, searcher, cmd.InOrStdin(), debounce)
		}
		if len(args) == 0 {
			return NewExitError(ExitCommandError, "search text is required unless --interactive is set")
		}
		if page < 1 {
			return NewExitError(ExitCommandError, "--page must be at least 1")
		}
		res, err := searcher.Search(ctx, args[0], page)
		if err != nil {
			return err
		}
		return a.out.Success(res, func(w io.Writer) error { return renderSearch(w, res) })
	})
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read search text line by line from stdin")
	cmd.Flags().DurationVar(&debounce, "debounce", envDuration("SEARCH_DEBOUNCE", search.DefaultDelay), "pause before an interactive search runs (env SEARCH_DEBOUNCE)")
	return cmd
}

// interactiveSearch feeds stdin lines to a Debouncer. At EOF the last
// line is searched directly if its result has not been printed yet, so
// piped input always ends with an answer.
func interactiveSearch(ctx context.Context, a *app, s *search.Searcher, in io.Reader, delay time.Duration) error {
	var (
		mu       sync.Mutex
		closed   bool
		reported string
		failed   error
	)
	report := func(res search.Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		if err != nil {
			failed = err
			a.out.VerboseLog("search: %v", err)
			return
		}
		if res.Query == "" {
			return
		}
		reported = res.Query
		failed = nil
		_ = a.out.Success(res, func(w io.Writer) error { return renderSearch(w, res) })
	}

	d := search.NewDebouncer(ctx, delay, s, report)
	last := ""
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		last = line
		d.Input(line)
	}
	d.Stop()
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	mu.Lock()
	closed = true
	done, lastErr := reported, failed
	mu.Unlock()

	text := search.Normalize(last)
	if text == "" || text == done {
		return lastErr
	}
	res, err := s.Search(ctx, text, 1)
	if err != nil {
		return err
	}
	return a.out.Success(res, func(w io.Writer) error { return renderSearch(w, res) })
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil && id > 0
}
