package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/anupamy140/final-ecommerce/internal/cart"
	"github.com/anupamy140/final-ecommerce/internal/catalog"
	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/session"
	"github.com/anupamy140/final-ecommerce/internal/store"

	"github.com/spf13/cobra"
)

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// ===== auth =====

var loginCmd = &cobra.Command{
	Use:   "login EMAIL PASSWORD",
	Short: "Log in and persist the session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		return deps.session.Login(ctx, args[0], args[1])
	},
}

var (
	regUsername, regDOB                               string
	regStreet, regCity, regState, regPostal, regCountry string
)

var registerCmd = &cobra.Command{
	Use:   "register EMAIL PASSWORD",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		return deps.session.Register(ctx, session.RegisterInput{
			Email:    args[0],
			Password: args[1],
			Username: regUsername,
			DOB:      regDOB,
			Address: model.AddressInput{
				Street:     regStreet,
				City:       regCity,
				State:      regState,
				PostalCode: regPostal,
				Country:    regCountry,
			},
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		return deps.session.Logout(ctx)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who is logged in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		user := deps.session.CurrentUser(ctx)
		if user == "" {
			fmt.Println("not logged in")
		} else {
			fmt.Println("user:", user)
		}
		if v := deps.session.CurrentVendor(ctx); v != nil {
			fmt.Printf("vendor: %s <%s>\n", v.CompanyName, v.Email)
		}
		return nil
	},
}

// ===== catalog =====

var (
	listPage, listLimit int
	listCategory        string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		page, err := deps.catalog.List(ctx, catalog.ListInput{Page: listPage, Limit: listLimit, Category: listCategory})
		if err != nil {
			return err
		}
		printProducts(page)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		page, err := deps.catalog.Search(ctx, args[0], listPage, listLimit)
		if err != nil {
			return err
		}
		printProducts(page)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		categories, err := deps.catalog.Categories(ctx)
		if err != nil {
			return err
		}
		for _, cat := range categories {
			fmt.Println(cat)
		}
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show order history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		orders, err := deps.catalog.Orders(ctx)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			fmt.Println("no orders yet")
			return nil
		}
		for _, o := range orders {
			fmt.Printf("%s  %s  %s  %d item(s)\n", o.CreatedAt.Format("2006-01-02"), o.Status, cart.FormatPrice(o.Total), len(o.Items))
		}
		return nil
	},
}

func printProducts(page model.ProductPage) {
	for _, p := range page.Products {
		fmt.Printf("%4d  %-32s  %10s  stock:%d\n", p.ID, p.Title, cart.FormatPrice(p.Price), p.Stock)
	}
	fmt.Printf("page %d (%d total)\n", page.Page, page.Total)
}

// ===== cart =====

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := deps.engine.Refresh(ctx); err != nil {
			return err
		}
		lines := deps.engine.Lines()
		if len(lines) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		for _, l := range lines {
			fmt.Printf("%4d  %-32s  %10s  x%d\n", l.ProductID, l.Title, cart.FormatPrice(l.UnitPrice), l.Quantity)
		}
		fmt.Println("subtotal:", cart.FormatPrice(deps.engine.Subtotal()))
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add PRODUCT_ID [QUANTITY]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		productID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[0])
		}
		qty := int64(1)
		if len(args) == 2 {
			qty, err = strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity: %s", args[1])
			}
		}

		product, err := deps.catalog.Product(ctx, productID)
		if err != nil {
			return err
		}

		//サーバーの同期までやってから戻る。
		//CLIは対話の猶予が無いので、明示dismiss扱いで即confirmする。
		opID, err := deps.engine.AddToCart(ctx, product, qty)
		if err != nil {
			return err
		}
		return deps.engine.Finalize(ctx, opID)
	},
}

var cartQtyCmd = &cobra.Command{
	Use:   "qty PRODUCT_ID QUANTITY",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		productID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[0])
		}
		qty, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity: %s", args[1])
		}
		return deps.engine.ChangeQuantity(ctx, productID, qty)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove PRODUCT_ID",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		productID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[0])
		}
		return deps.engine.Remove(ctx, productID)
	},
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Check out the cart with the selected address",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := deps.engine.Refresh(ctx); err != nil {
			return err
		}
		if err := deps.addresses.Refresh(ctx); err != nil {
			return err
		}

		url, err := deps.engine.Checkout(ctx, deps.addresses.SelectedID(), deps.cfg.SuccessURL, deps.cfg.CancelURL)
		if err != nil {
			return err
		}
		if url != "" {
			fmt.Println("complete your payment at:", url)
		}
		return nil
	},
}

// ===== wishlist =====

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage the wishlist",
}

var wishlistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the wishlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := deps.wishlist.Refresh(ctx); err != nil {
			return err
		}
		items := deps.wishlist.Items()
		if len(items) == 0 {
			fmt.Println("wishlist is empty")
			return nil
		}
		for _, p := range items {
			fmt.Printf("%4d  %-32s  %10s\n", p.ID, p.Title, cart.FormatPrice(p.Price))
		}
		return nil
	},
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle PRODUCT_ID",
	Short: "Add or remove a product from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		productID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[0])
		}
		if err := deps.wishlist.Refresh(ctx); err != nil {
			return err
		}
		product, err := deps.catalog.Product(ctx, productID)
		if err != nil {
			return err
		}
		return deps.wishlist.Toggle(ctx, product)
	},
}

// ===== addresses =====

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Manage shipping addresses",
}

var addrStreet, addrCity, addrState, addrPostal, addrCountry string

func addressInputFromFlags() model.AddressInput {
	return model.AddressInput{
		Street:     addrStreet,
		City:       addrCity,
		State:      addrState,
		PostalCode: addrPostal,
		Country:    addrCountry,
	}
}

var addressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := deps.addresses.Refresh(ctx); err != nil {
			return err
		}
		selected := deps.addresses.SelectedID()
		for _, a := range deps.addresses.Addresses() {
			marker := " "
			if a.ID == selected {
				marker = "*"
			}
			def := ""
			if a.IsDefault {
				def = " (default)"
			}
			fmt.Printf("%s %s  %s, %s, %s %s, %s%s\n", marker, a.ID, a.Street, a.City, a.State, a.PostalCode, a.Country, def)
		}
		return nil
	},
}

var addressAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		return deps.addresses.Create(ctx, addressInputFromFlags())
	},
}

var addressUpdateCmd = &cobra.Command{
	Use:   "update ADDRESS_ID",
	Short: "Update an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := deps.addresses.Refresh(ctx); err != nil {
			return err
		}
		return deps.addresses.Update(ctx, args[0], addressInputFromFlags())
	},
}

var addressDeleteCmd = &cobra.Command{
	Use:   "delete ADDRESS_ID",
	Short: "Delete an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := deps.addresses.Refresh(ctx); err != nil {
			return err
		}
		return deps.addresses.Delete(ctx, args[0])
	},
}

var addressSelectCmd = &cobra.Command{
	Use:   "select ADDRESS_ID",
	Short: "Choose the address used at checkout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := deps.addresses.Refresh(ctx); err != nil {
			return err
		}
		if !deps.addresses.Select(ctx, args[0]) {
			return fmt.Errorf("no such address: %s", args[0])
		}
		fmt.Println("selected", args[0])
		return nil
	},
}

// ===== theme =====

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Get or set the UI theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if len(args) == 0 {
			theme, err := deps.st.Value(ctx, store.KeyTheme)
			if err != nil {
				return err
			}
			if theme == "" {
				theme = "light"
			}
			fmt.Println(theme)
			return nil
		}
		if args[0] != "light" && args[0] != "dark" {
			return fmt.Errorf("theme must be light or dark")
		}
		return deps.st.SetValue(ctx, store.KeyTheme, args[0])
	},
}

func init() {
	registerCmd.Flags().StringVar(&regUsername, "username", "", "display name")
	registerCmd.Flags().StringVar(&regDOB, "dob", "", "date of birth (YYYY-MM-DD)")
	registerCmd.Flags().StringVar(&regStreet, "street", "", "street")
	registerCmd.Flags().StringVar(&regCity, "city", "", "city")
	registerCmd.Flags().StringVar(&regState, "state", "", "state")
	registerCmd.Flags().StringVar(&regPostal, "postal", "", "postal code")
	registerCmd.Flags().StringVar(&regCountry, "country", "", "country")

	for _, c := range []*cobra.Command{productsCmd, searchCmd} {
		c.Flags().IntVar(&listPage, "page", 1, "page number")
		c.Flags().IntVar(&listLimit, "limit", 12, "items per page")
	}
	productsCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")

	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartQtyCmd, cartRemoveCmd, cartCheckoutCmd)
	wishlistCmd.AddCommand(wishlistShowCmd, wishlistToggleCmd)

	for _, c := range []*cobra.Command{addressAddCmd, addressUpdateCmd} {
		c.Flags().StringVar(&addrStreet, "street", "", "street")
		c.Flags().StringVar(&addrCity, "city", "", "city")
		c.Flags().StringVar(&addrState, "state", "", "state")
		c.Flags().StringVar(&addrPostal, "postal", "", "postal code")
		c.Flags().StringVar(&addrCountry, "country", "", "country")
	}
	addressCmd.AddCommand(addressListCmd, addressAddCmd, addressUpdateCmd, addressDeleteCmd, addressSelectCmd)
}
