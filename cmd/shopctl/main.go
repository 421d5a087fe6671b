package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/anupamy140/final-ecommerce/internal/address"
	"github.com/anupamy140/final-ecommerce/internal/api"
	"github.com/anupamy140/final-ecommerce/internal/cart"
	"github.com/anupamy140/final-ecommerce/internal/catalog"
	"github.com/anupamy140/final-ecommerce/internal/config"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/infra/db"
	infrastore "github.com/anupamy140/final-ecommerce/internal/infra/store"
	"github.com/anupamy140/final-ecommerce/internal/notify"
	"github.com/anupamy140/final-ecommerce/internal/session"
	"github.com/anupamy140/final-ecommerce/internal/store"
	"github.com/anupamy140/final-ecommerce/internal/vendor"
	"github.com/anupamy140/final-ecommerce/internal/wishlist"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

// CLIが使う部品一式
type app struct {
	cfg       config.Config
	log       *zap.Logger
	st        store.Store
	bus       *event.Bus
	notifier  notify.Notifier
	session   *session.Manager
	catalog   *catalog.Service
	engine    *cart.Engine
	wishlist  *wishlist.Service
	addresses *address.Book
	vendors   *vendor.Service
}

var (
	// Global flags
	verbose bool
	envFile string

	deps *app
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Storefront client CLI",
	Long: `shopctl is a command line front end for the storefront backend.

It keeps your login session, cart, wishlist and addresses on this
machine and talks to the REST backend configured via API_BASE.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		//.envは無くてもよい
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return err
			}
		} else {
			_ = godotenv.Load()
		}

		zcfg := zap.NewProductionConfig()
		if !verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		log, err := zcfg.Build()
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		gormDB, err := db.Connect(cfg.StateDBPath)
		if err != nil {
			return fmt.Errorf("open state db: %w", err)
		}
		st, err := infrastore.NewGormStore(gormDB)
		if err != nil {
			return fmt.Errorf("migrate state db: %w", err)
		}

		bus := event.NewBus()
		notifier := notify.NewLogNotifier(log)
		httpClient := &http.Client{Timeout: 30 * time.Second}

		userClient := api.NewUserClient(cfg.APIBase, httpClient, st, bus, log)
		vendorClient := api.NewVendorClient(cfg.APIBase, httpClient, st, bus, log)

		cat := catalog.NewService(userClient)
		engine := cart.NewEngine(userClient, cat, notifier, &uuidGenerator{}, cart.NewRealScheduler(), cfg.UndoWindow(), log)
		wl := wishlist.NewService(userClient, notifier)
		book := address.NewBook(userClient, st, notifier)

		//ログイン・ログアウト（強制ログアウト含む）で各状態を同期し直す
		engine.BindBus(bus)
		wl.BindBus(bus)
		book.BindBus(bus)

		deps = &app{
			cfg:       cfg,
			log:       log,
			st:        st,
			bus:       bus,
			notifier:  notifier,
			session:   session.NewManager(st, userClient, vendorClient, bus, notifier, log),
			catalog:   cat,
			engine:    engine,
			wishlist:  wl,
			addresses: book,
			vendors:   vendor.NewService(vendorClient),
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deps != nil {
			_ = deps.log.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file")

	rootCmd.AddCommand(
		loginCmd, registerCmd, logoutCmd, whoamiCmd,
		productsCmd, searchCmd, categoriesCmd, ordersCmd,
		cartCmd, wishlistCmd, addressCmd, themeCmd,
		vendorCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
