package stub

import (
	"net/http"
	"sync"
	"time"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// Server は開発・テスト用のインメモリバックエンド。
// フロントが叩くREST面を一通り実装する。エラーボディは {"detail": "..."}。
type Server struct {
	echo   *echo.Echo
	secret []byte

	accessTTL time.Duration

	mu            sync.Mutex
	users         map[string]*account
	vendors       map[string]*vendorAccount
	refreshTokens map[string]refreshRecord
	products      map[int64]model.Product
	nextProductID int64
	carts         map[string]map[int64]int64
	wishlists     map[string]map[int64]struct{}
	addresses     map[string][]model.Address
	orders        map[string][]model.Order

	//空でなければcheckoutが {url} を返す（外部決済のふり）
	PaymentURL string
}

type account struct {
	Email        string
	Username     string
	PasswordHash string
	DOB          string
}

type vendorAccount struct {
	VendorID     string
	CompanyName  string
	Email        string
	PasswordHash string
}

type tokenKind string

const (
	kindUser   tokenKind = "user"
	kindVendor tokenKind = "vendor"
)

type refreshRecord struct {
	Subject string
	Kind    tokenKind
}

func New(secret string) *Server {
	s := &Server{
		echo:          echo.New(),
		secret:        []byte(secret),
		accessTTL:     15 * time.Minute,
		users:         map[string]*account{},
		vendors:       map[string]*vendorAccount{},
		refreshTokens: map[string]refreshRecord{},
		products:      map[int64]model.Product{},
		nextProductID: 1,
		carts:         map[string]map[int64]int64{},
		wishlists:     map[string]map[int64]struct{}{},
		addresses:     map[string][]model.Address{},
		orders:        map[string][]model.Order{},
	}
	s.echo.HideBanner = true
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.POST("/users/register", s.registerUser)
	e.POST("/users/login", s.loginUser)
	e.POST("/users/refresh", s.refreshUser)

	e.POST("/vendors/register", s.registerVendor)
	e.POST("/vendors/login", s.loginVendor)
	e.POST("/vendors/refresh", s.refreshVendor)

	e.GET("/products", s.listProducts)
	e.GET("/products/search", s.searchProducts)
	e.GET("/products/:id", s.getProduct)
	e.GET("/categories", s.listCategories)

	ug := e.Group("", s.authJWT(kindUser))
	ug.GET("/cart", s.getCart)
	ug.POST("/cart/add", s.addToCart)
	ug.POST("/cart/update_quantity", s.updateQuantity)
	ug.POST("/cart/remove", s.removeFromCart)
	ug.POST("/cart/checkout", s.checkout)

	ug.GET("/wishlist", s.getWishlist)
	ug.POST("/wishlist/add", s.addToWishlist)
	ug.POST("/wishlist/remove", s.removeFromWishlist)

	ug.GET("/users/addresses", s.listAddresses)
	ug.POST("/users/addresses", s.createAddress)
	ug.PUT("/users/addresses/:id", s.updateAddress)
	ug.DELETE("/users/addresses/:id", s.deleteAddress)

	ug.GET("/orders", s.listOrders)

	vg := e.Group("/vendors/products", s.authJWT(kindVendor))
	vg.GET("", s.listVendorProducts)
	vg.POST("", s.createVendorProduct)
	vg.PUT("/:id", s.updateVendorProduct)
	vg.DELETE("/:id", s.deleteVendorProduct)
}

// http.Handlerとして使う（httptest.NewServerにそのまま渡せる）
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func detailJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Detail: msg})
}

// SeedProduct は商品を登録してIDを返す（テスト・開発用）。
func (s *Server) SeedProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.nextProductID
	}
	if p.ID >= s.nextProductID {
		s.nextProductID = p.ID + 1
	}
	s.products[p.ID] = p
	return p
}
