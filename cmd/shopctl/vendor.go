package main

import (
	"fmt"
	"strconv"

	"github.com/anupamy140/final-ecommerce/internal/cart"
	"github.com/anupamy140/final-ecommerce/internal/vendor"

	"github.com/spf13/cobra"
)

// 出品者側のコマンド。userのセッションとは独立した名義で動く。
var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Vendor account and product management",
}

var vendorLoginCmd = &cobra.Command{
	Use:   "login EMAIL PASSWORD",
	Short: "Log in as a vendor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		return deps.session.VendorLogin(ctx, args[0], args[1])
	},
}

var vendorCompanyName string

var vendorRegisterCmd = &cobra.Command{
	Use:   "register EMAIL PASSWORD",
	Short: "Create a vendor account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		return deps.session.VendorRegister(ctx, vendorCompanyName, args[0], args[1])
	},
}

var vendorLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the vendor session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()
		return deps.session.VendorLogout(ctx)
	},
}

var vendorProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage your listed products",
}

var vendorProductsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		products, err := deps.vendors.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%4d  %-32s  %10s  stock:%d\n", p.ID, p.Title, cart.FormatPrice(p.Price), p.Stock)
		}
		return nil
	},
}

var (
	vpTitle, vpDescription, vpBrand, vpCategory, vpThumbnail string
	vpPrice                                                  float64
	vpStock                                                  int64
)

func vendorProductInput() vendor.ProductInput {
	return vendor.ProductInput{
		Title:       vpTitle,
		Description: vpDescription,
		Price:       vpPrice,
		Stock:       vpStock,
		Brand:       vpBrand,
		Category:    vpCategory,
		Thumbnail:   vpThumbnail,
	}
}

var vendorProductsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "List a new product",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		p, err := deps.vendors.Create(ctx, vendorProductInput())
		if err != nil {
			return err
		}
		fmt.Println("created product", p.ID)
		return nil
	},
}

var vendorProductsUpdateCmd = &cobra.Command{
	Use:   "update PRODUCT_ID",
	Short: "Update one of your products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[0])
		}
		if _, err := deps.vendors.Update(ctx, id, vendorProductInput()); err != nil {
			return err
		}
		fmt.Println("updated product", id)
		return nil
	},
}

var vendorProductsDeleteCmd = &cobra.Command{
	Use:   "delete PRODUCT_ID",
	Short: "Delete one of your products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id: %s", args[0])
		}
		return deps.vendors.Delete(ctx, id)
	},
}

func init() {
	vendorRegisterCmd.Flags().StringVar(&vendorCompanyName, "company", "", "company name")

	for _, c := range []*cobra.Command{vendorProductsAddCmd, vendorProductsUpdateCmd} {
		c.Flags().StringVar(&vpTitle, "title", "", "product title")
		c.Flags().StringVar(&vpDescription, "description", "", "description")
		c.Flags().Float64Var(&vpPrice, "price", 0, "price")
		c.Flags().Int64Var(&vpStock, "stock", 0, "stock")
		c.Flags().StringVar(&vpBrand, "brand", "", "brand")
		c.Flags().StringVar(&vpCategory, "category", "", "category")
		c.Flags().StringVar(&vpThumbnail, "thumbnail", "", "thumbnail URL")
	}

	vendorProductsCmd.AddCommand(vendorProductsListCmd, vendorProductsAddCmd, vendorProductsUpdateCmd, vendorProductsDeleteCmd)
	vendorCmd.AddCommand(vendorLoginCmd, vendorRegisterCmd, vendorLogoutCmd, vendorProductsCmd)
}
