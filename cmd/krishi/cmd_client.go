package main

import (
	"bufio"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/client"
	"github.com/shashiranjanraj/krishi/pkg/crypt"
)

// newClient builds an API client and restores the saved session, if any.
func newClient() (*client.Client, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	file := client.NewTokenFile(config.ClientTokenPath(), crypt.FromConfig())
	c := client.New(config.APIBaseURL(), client.WithTokenFile(file))
	if _, err := c.Session().Restore(); err != nil {
		return nil, err
	}
	return c, nil
}

// explain turns API errors into something a person can act on.
func explain(err error) error {
	e, ok := apperr.As(err)
	if !ok {
		return err
	}
	switch {
	case e.Kind == apperr.KindAuth && e.Code != apperr.CodeInvalidCredentials:
		return errors.New("not signed in or session expired; run `krishi login`")
	case e.Kind == apperr.KindNetwork:
		return fmt.Errorf("cannot reach %s: %v", config.APIBaseURL(), e.Err)
	case e.Kind == apperr.KindConflict:
		return fmt.Errorf("%s [%s]", e.Message, apperr.CodeOf(err))
	case len(e.Fields) > 0:
		parts := make([]string, 0, len(e.Fields))
		for f, m := range e.Fields {
			parts = append(parts, f+": "+m)
		}
		return fmt.Errorf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	return errors.New(e.Message)
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

func table() *tabwriter.Writer { return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0) }

// ── Session ──────────────────────────────────────────────────────────────────

var (
	loginEmailFlag    string
	loginPasswordFlag string
)

// krishi login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		password := loginPasswordFlag
		if password == "" {
			password = os.Getenv("KRISHI_PASSWORD")
		}
		if password == "" {
			fmt.Print("Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return err
			}
			password = strings.TrimSpace(line)
		}
		u, err := c.Login(cmd.Context(), loginEmailFlag, password)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Signed in as %s (%s), session ends %s\n",
			u.Email, u.Role, c.Session().ExpiresAt().Local().Format("2006-01-02 15:04"))
		return nil
	},
}

// krishi whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		u, err := c.Me(cmd.Context())
		if err != nil {
			return explain(err)
		}
		w := table()
		fmt.Fprintf(w, "ID\t%d\nName\t%s\nEmail\t%s\nRole\t%s\nStatus\t%s\n", u.ID, u.Name, u.Email, u.Role, u.Status)
		return w.Flush()
	},
}

// krishi logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the saved token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		c.Logout(cmd.Context())
		fmt.Println("Signed out.")
		return nil
	},
}

// ── Catalogue and cart ───────────────────────────────────────────────────────

var (
	productsSearchFlag   string
	productsCategoryFlag string
	productsPageFlag     int
)

// krishi products
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		page, err := c.Products(cmd.Context(), client.ProductQuery{
			Search: productsSearchFlag, Category: productsCategoryFlag, Page: productsPageFlag,
		})
		if err != nil {
			return explain(err)
		}
		w := table()
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tUNIT\tSTOCK")
		for _, p := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Unit, p.Stock)
		}
		fmt.Fprintf(w, "\npage %d of %d (%d products)\n", page.Pagination.Page, page.Pagination.LastPage, page.Pagination.Total)
		return w.Flush()
	},
}

func printCart(cart *client.Cart) error {
	if len(cart.Lines) == 0 {
		fmt.Println("Cart is empty.")
		return nil
	}
	w := table()
	fmt.Fprintln(w, "ID\tPRODUCT\tQTY\tPRICE")
	for _, l := range cart.Lines {
		fmt.Fprintf(w, "%d\t%s\t%d %s\t%s\n", l.ProductID, l.Name, l.Quantity, l.Unit, l.Price.StringFixed(2))
	}
	q := cart.Quote
	fmt.Fprintf(w, "\t\tSubtotal\t%s\n\t\tPlatform fee\t%s\n\t\tTotal\t%s\n",
		q.Subtotal.StringFixed(2), q.PlatformFee.StringFixed(2), q.Total.StringFixed(2))
	return w.Flush()
}

// krishi cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show your cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		cart, err := c.Cart(cmd.Context())
		if err != nil {
			return explain(err)
		}
		return printCart(cart)
	},
}

var cartQuantityFlag int

// krishi cart:add <product-id>
var cartAddCmd = &cobra.Command{
	Use:   "cart:add <product-id>",
	Short: "Add a product to your cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		cart, err := c.AddToCart(cmd.Context(), id, cartQuantityFlag)
		if err != nil {
			return explain(err)
		}
		return printCart(cart)
	},
}

// ── Orders ───────────────────────────────────────────────────────────────────

var checkoutAddressFlag string

// krishi checkout
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for everything in your cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		o, err := c.Checkout(cmd.Context(), checkoutAddressFlag)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Order %s placed: %s total, %s\n", o.Number, o.Total.StringFixed(2), o.StatusLabel)
		return nil
	},
}

var ordersStatusFlag string

// krishi orders
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List the orders you can see",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		page, err := c.Orders(cmd.Context(), ordersStatusFlag, 0)
		if err != nil {
			return explain(err)
		}
		w := table()
		fmt.Fprintln(w, "ID\tNUMBER\tSTATUS\tTOTAL\tPLACED")
		for _, o := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.Number, o.StatusLabel, o.Total.StringFixed(2),
				o.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

// krishi order:status <order-id> <status>
var orderStatusCmd = &cobra.Command{
	Use:   "order:status <order-id> <status>",
	Short: "Advance an order (farmers and admins), or cancel it",
	Long:  "Status is canonical (confirmed, shipped, delivered, cancelled) or a dispatch label such as \"Dispatched\".",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		var o *client.Order
		if strings.EqualFold(args[1], "cancelled") || strings.EqualFold(args[1], "cancel") {
			o, err = c.Cancel(cmd.Context(), id)
		} else {
			o, err = c.Advance(cmd.Context(), id, args[1])
		}
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Order %s is now %s\n", o.Number, o.StatusLabel)
		return nil
	},
}

// ── Moderation ───────────────────────────────────────────────────────────────

var moderateNoteFlag string

// krishi moderate <farmers|products|lands> <action> <id>...
var moderateCmd = &cobra.Command{
	Use:   "moderate <farmers|products|lands> <action> <id>...",
	Short: "Apply a moderation action (admins)",
	Long: "Farmers: verify, reject, suspend, reactivate. Products and lands: approve, reject, pending.\n" +
		"Several product or land ids are moderated in bulk; each id succeeds or fails on its own.",
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, action := args[0], args[1]
		ids := make([]uint, 0, len(args)-2)
		for _, a := range args[2:] {
			id, err := parseID(a)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		switch {
		case entity == "farmers":
			for _, id := range ids {
				u, err := c.ModerateFarmer(ctx, id, action, moderateNoteFlag)
				if err != nil {
					return fmt.Errorf("farmer %d: %w", id, explain(err))
				}
				fmt.Printf("Farmer %s is now %s\n", u.Email, u.Status)
			}
			return nil
		case len(ids) == 1 && entity == "products":
			p, err := c.ModerateProduct(ctx, ids[0], action, moderateNoteFlag)
			if err != nil {
				return explain(err)
			}
			fmt.Printf("Product %s is now %s\n", p.Name, p.Status)
			return nil
		case len(ids) == 1 && entity == "lands":
			l, err := c.ModerateLand(ctx, ids[0], action, moderateNoteFlag)
			if err != nil {
				return explain(err)
			}
			fmt.Printf("Land %s is now %s\n", l.Name, l.Status)
			return nil
		}

		report, err := c.BulkModerate(ctx, entity, action, ids, moderateNoteFlag)
		if err != nil {
			return explain(err)
		}
		w := table()
		for _, id := range report.Succeeded {
			fmt.Fprintf(w, "%d\t%s\n", id, action)
		}
		for _, id := range slices.Sorted(maps.Keys(report.Failed)) {
			fmt.Fprintf(w, "%d\tfailed: %s\n", id, report.Failed[id])
		}
		return w.Flush()
	},
}

func init() {
	moderateCmd.Flags().StringVarP(&moderateNoteFlag, "note", "n", "", "Moderation note")

	loginCmd.Flags().StringVarP(&loginEmailFlag, "email", "e", "", "Account email")
	loginCmd.Flags().StringVar(&loginPasswordFlag, "password", "", "Password (default $KRISHI_PASSWORD, else prompt)")
	_ = loginCmd.MarkFlagRequired("email")

	productsCmd.Flags().StringVarP(&productsSearchFlag, "search", "s", "", "Name contains")
	productsCmd.Flags().StringVarP(&productsCategoryFlag, "category", "c", "", "Category")
	productsCmd.Flags().IntVar(&productsPageFlag, "page", 1, "Page number")

	cartAddCmd.Flags().IntVarP(&cartQuantityFlag, "quantity", "q", 1, "Quantity")

	checkoutCmd.Flags().StringVarP(&checkoutAddressFlag, "address", "a", "", "Shipping address")

	ordersCmd.Flags().StringVar(&ordersStatusFlag, "status", "", "Only orders in this status")
}
