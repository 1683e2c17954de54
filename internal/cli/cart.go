package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

func NewCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart",
		Long: `Manage the local shopping cart.

The cart lives in the --store file and survives between runs.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart and its totals",
		Args:  cobra.NoArgs,
		RunE: runner(opts, func(ctx context.Context, a *app, _ []string) error {
			return showCart(a, a.cart(ctx).Snapshot())
		}),
	})

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: runner(opts, func(ctx context.Context, a *app, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			if qty < 1 {
				return NewExitError(ExitCommandError, "--qty must be at least 1")
			}
			p, err := a.products.Get(ctx, id)
			if err != nil {
				return err
			}
			if p.Status != clients.ProductActive {
				return NewExitError(ExitFailure, fmt.Sprintf("%s is not available (%s)", p.Name, p.Status))
			}
			m := a.cart(ctx)
			m.Add(cart.Line{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price.Decimal,
				Image:    a.images.URL(p.Image),
				Quantity: qty,
			})
			return showCart(a, m.Snapshot())
		}),
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "update <product-id> <qty>",
		Short: "Set the quantity of a cart line",
		Long: `Set the quantity of a cart line. Quantities below 1 are raised to 1;
use "cart remove" to drop a line.`,
		Args: cobra.ExactArgs(2),
		RunE: runner(opts, func(ctx context.Context, a *app, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}
			m := a.cart(ctx)
			if err := inCart(m, id); err != nil {
				return err
			}
			m.UpdateQuantity(id, q)
			return showCart(a, m.Snapshot())
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: runner(opts, func(ctx context.Context, a *app, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			m := a.cart(ctx)
			if err := inCart(m, id); err != nil {
				return err
			}
			m.Remove(id)
			return showCart(a, m.Snapshot())
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: runner(opts, func(ctx context.Context, a *app, _ []string) error {
			m := a.cart(ctx)
			m.Clear()
			return showCart(a, m.Snapshot())
		}),
	})

	return cmd
}

func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	var form checkout.Form
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		Long: `Place an order for everything in the cart.

The cart is emptied only once the API has accepted the order.`,
		Args: cobra.NoArgs,
		RunE: runner(opts, func(ctx context.Context, a *app, _ []string) error {
			order, err := a.checkout().PlaceOrder(ctx, form, a.cart(ctx))
			if err != nil {
				return err
			}
			return a.out.Success(order, func(w io.Writer) error {
				fmt.Fprintln(w, "order placed")
				return renderOrder(w, *order)
			})
		}),
	}
	cmd.Flags().StringVar(&form.FullName, "name", "", "recipient full name")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "recipient phone, 10 digits")
	cmd.Flags().StringVar(&form.Email, "email", "", "recipient email")
	cmd.Flags().StringVar(&form.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&form.PaymentMethod, "payment", checkout.PaymentCOD, "payment method (COD or bank)")
	cmd.Flags().StringVar(&form.Note, "note", "", "note for the shop")
	return cmd
}

func showCart(a *app, s cart.Snapshot) error {
	if s.Lines == nil {
		s.Lines = []cart.Line{}
	}
	return a.out.Success(s, func(w io.Writer) error { return renderCart(w, s) })
}

func inCart(m *cart.Manager, id int64) error {
	for _, l := range m.Lines() {
		if l.ID == id {
			return nil
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("product %d is not in the cart", id))
}

func argID(s string) (int64, error) {
	id, ok := parseID(s)
	if !ok {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}
