package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/format"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/images"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/search"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderCategories(w io.Writer, cats []clients.Category) error {
	if len(cats) == 0 {
		_, err := fmt.Fprintln(w, "no categories")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tSLUG\tPRODUCTS")
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", c.ID, c.Name, c.Slug, c.ProductCount)
	}
	return tw.Flush()
}

func renderCategory(w io.Writer, c clients.Category) error {
	fmt.Fprintf(w, "%s (#%d)\n", c.Name, c.ID)
	fmt.Fprintf(w, "  slug:     %s\n", c.Slug)
	if c.Description != "" {
		fmt.Fprintf(w, "  about:    %s\n", c.Description)
	}
	_, err := fmt.Fprintf(w, "  products: %d\n", c.ProductCount)
	return err
}

func renderProducts(w io.Writer, page clients.Page[clients.Product]) error {
	if len(page.Data) == 0 {
		_, err := fmt.Fprintln(w, "no products")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTATUS\tSTOCK")
	for _, p := range page.Data {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, format.VND(p.Price.Decimal), p.Status, p.Stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	pg := page.Pagination
	_, err := fmt.Fprintf(w, "page %d/%d, %d products\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
	return err
}

func renderProduct(w io.Writer, p clients.Product, related []clients.Product, res *images.Resolver) error {
	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(w, "  slug:     %s\n", p.Slug)
	fmt.Fprintf(w, "  price:    %s\n", format.VND(p.Price.Decimal))
	if p.OriginalPrice != nil {
		fmt.Fprintf(w, "  was:      %s\n", format.VND(p.OriginalPrice.Decimal))
	}
	fmt.Fprintf(w, "  status:   %s, %d in stock\n", p.Status, p.Stock)
	if p.Category != nil {
		fmt.Fprintf(w, "  category: %s\n", p.Category.Name)
	}
	fmt.Fprintf(w, "  image:    %s\n", res.URL(p.Image))
	if len(related) == 0 {
		return nil
	}
	fmt.Fprintln(w, "related:")
	tw := table(w)
	for _, r := range related {
		fmt.Fprintf(tw, "  #%d\t%s\t%s\n", r.ID, r.Name, format.VND(r.Price.Decimal))
	}
	return tw.Flush()
}

func renderSearch(w io.Writer, res search.Result) error {
	if len(res.Products) == 0 {
		_, err := fmt.Fprintf(w, "no results for %q\n", res.Query)
		return err
	}
	more := ""
	if res.HasMore {
		more = ", more available"
	}
	fmt.Fprintf(w, "%q: %d found%s\n", res.Query, len(res.Products), more)
	tw := table(w)
	for _, p := range res.Products {
		fmt.Fprintf(tw, "  #%d\t%s\t%s\n", p.ID, p.Name, format.VND(p.Price.Decimal))
	}
	return tw.Flush()
}

func renderCart(w io.Writer, s cart.Snapshot) error {
	if len(s.Lines) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range s.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.ID, l.Name, l.Quantity, format.VND(l.Price), format.VND(l.Subtotal()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "total: %d items, %s\n", s.TotalItems, format.VND(s.TotalPrice))
	return err
}

func renderOrder(w io.Writer, o clients.Order) error {
	fmt.Fprintf(w, "order %s (#%d) %s\n", o.OrderNumber, o.ID, o.Status)
	fmt.Fprintf(w, "  customer: %s, %s\n", o.CustomerName, o.CustomerPhone)
	if o.CustomerEmail != "" {
		fmt.Fprintf(w, "  email:    %s\n", o.CustomerEmail)
	}
	fmt.Fprintf(w, "  address:  %s\n", o.CustomerAddress)
	fmt.Fprintf(w, "  payment:  %s\n", o.PaymentMethod)
	if o.Note != "" {
		fmt.Fprintf(w, "  note:     %s\n", o.Note)
	}
	if len(o.Items) > 0 {
		tw := table(w)
		for _, it := range o.Items {
			sub := it.ProductPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			fmt.Fprintf(tw, "  %d x\t%s\t%s\n", it.Quantity, it.ProductName, format.VND(sub))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  total:    %s\n", format.VND(o.Total.Decimal))
	return err
}

func renderOrders(w io.Writer, page clients.Page[clients.Order]) error {
	if len(page.Data) == 0 {
		_, err := fmt.Fprintln(w, "no orders")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNUMBER\tCUSTOMER\tTOTAL\tSTATUS")
	for _, o := range page.Data {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.OrderNumber, o.CustomerName, format.VND(o.Total.Decimal), o.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	pg := page.Pagination
	_, err := fmt.Fprintf(w, "page %d/%d, %d orders\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
	return err
}

func renderDashboard(w io.Writer, s clients.Statistics) error {
	fmt.Fprintf(w, "revenue:   %s\n", format.VND(s.TotalRevenue.Decimal))
	fmt.Fprintf(w, "orders:    %d\n", s.TotalOrders)
	fmt.Fprintf(w, "products:  %d\n", s.TotalProducts)
	fmt.Fprintf(w, "customers: %d\n", s.TotalCustomers)
	if len(s.OrdersByStatus) > 0 {
		fmt.Fprintln(w, "by status:")
		for _, c := range s.OrdersByStatus {
			fmt.Fprintf(w, "  %s: %d\n", c.Status, c.Count)
		}
	}
	if len(s.RecentOrders) > 0 {
		fmt.Fprintln(w, "recent:")
		tw := table(w)
		for _, o := range s.RecentOrders {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", o.OrderNumber, o.CustomerName, format.VND(o.Total.Decimal), o.Status)
		}
		return tw.Flush()
	}
	return nil
}

func renderUser(w io.Writer, u clients.User) error {
	role := u.Role
	if role == "" {
		role = "user"
	}
	_, err := fmt.Fprintf(w, "%s <%s> (%s)\n", u.Name, u.Email, role)
	return err
}
