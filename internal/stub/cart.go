package stub

import (
	"net/http"
	"time"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type cartItemRef struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type cartResponse struct {
	Items []cartItemRef `json:"items"`
	Total float64       `json:"total"`
}

// 呼び出し側でmuを取ること。
func (s *Server) buildCartLocked(email string) cartResponse {
	items := make([]cartItemRef, 0, len(s.carts[email]))
	var total float64

	for productID, qty := range s.carts[email] {
		items = append(items, cartItemRef{ProductID: productID, Quantity: qty})
		if p, ok := s.products[productID]; ok {
			total += p.Price * float64(qty)
		}
	}
	return cartResponse{Items: items, Total: total}
}

func (s *Server) getCart(c echo.Context) error {
	email := subjectFromContext(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.buildCartLocked(email))
}

type addCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// カートに追加（同一商品は数量加算）。
func (s *Server) addToCart(c echo.Context) error {
	email := subjectFromContext(c)

	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.ProductID <= 0 || req.Quantity < 1 {
		return detailJSON(c, http.StatusBadRequest, "invalid product_id or quantity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[req.ProductID]
	if !ok {
		return detailJSON(c, http.StatusBadRequest, "unknown product")
	}

	if s.carts[email] == nil {
		s.carts[email] = map[int64]int64{}
	}

	newQty := s.carts[email][req.ProductID] + req.Quantity
	if newQty > p.Stock {
		return detailJSON(c, http.StatusBadRequest, "stock exceeded")
	}
	s.carts[email][req.ProductID] = newQty

	return c.JSON(http.StatusOK, s.buildCartLocked(email))
}

type updateQuantityRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// 数量の上書き
func (s *Server) updateQuantity(c echo.Context) error {
	email := subjectFromContext(c)

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return detailJSON(c, http.StatusBadRequest, "invalid quantity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[email][req.ProductID]; !ok {
		return detailJSON(c, http.StatusNotFound, "not in cart")
	}

	if p, ok := s.products[req.ProductID]; ok && req.Quantity > p.Stock {
		return detailJSON(c, http.StatusBadRequest, "stock exceeded")
	}
	s.carts[email][req.ProductID] = req.Quantity

	return c.JSON(http.StatusOK, s.buildCartLocked(email))
}

type removeCartRequest struct {
	ProductID int64 `json:"product_id"`
}

func (s *Server) removeFromCart(c echo.Context) error {
	email := subjectFromContext(c)

	var req removeCartRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[email][req.ProductID]; !ok {
		return detailJSON(c, http.StatusNotFound, "not in cart")
	}
	delete(s.carts[email], req.ProductID)

	return c.JSON(http.StatusOK, s.buildCartLocked(email))
}

type checkoutRequest struct {
	AddressID  string `json:"addressId"`
	Currency   string `json:"currency"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// checkoutは PaymentURL が設定されていれば {url}、無ければ即時完了で {total}。
// 即時完了のときはカートを空にして注文を積む。
func (s *Server) checkout(c echo.Context) error {
	email := subjectFromContext(c)

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.carts[email]) == 0 {
		return detailJSON(c, http.StatusBadRequest, "cart is empty")
	}
	if req.AddressID == "" {
		return detailJSON(c, http.StatusBadRequest, "addressId is required")
	}

	if s.PaymentURL != "" {
		return c.JSON(http.StatusOK, map[string]string{"url": s.PaymentURL})
	}

	var total float64
	items := make([]model.OrderItem, 0, len(s.carts[email]))
	for productID, qty := range s.carts[email] {
		p, ok := s.products[productID]
		if !ok {
			continue
		}
		total += p.Price * float64(qty)
		items = append(items, model.OrderItem{
			ProductID: productID,
			Title:     p.Title,
			Price:     p.Price,
			Quantity:  qty,
			Thumbnail: p.Thumbnail,
		})
	}

	s.orders[email] = append(s.orders[email], model.Order{
		ID:        uuid.NewString(),
		UserID:    email,
		Items:     items,
		Total:     total,
		Status:    model.OrderStatusPaid,
		CreatedAt: time.Now(),
	})
	s.carts[email] = map[int64]int64{}

	return c.JSON(http.StatusOK, map[string]float64{"total": total})
}

func (s *Server) listOrders(c echo.Context) error {
	email := subjectFromContext(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.orders[email]
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// ===== wishlist =====

func (s *Server) getWishlist(c echo.Context) error {
	email := subjectFromContext(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Product, 0, len(s.wishlists[email]))
	for productID := range s.wishlists[email] {
		if p, ok := s.products[productID]; ok {
			items = append(items, p)
		}
	}
	return c.JSON(http.StatusOK, map[string][]model.Product{"items": items})
}

type wishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

func (s *Server) addToWishlist(c echo.Context) error {
	email := subjectFromContext(c)

	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[req.ProductID]; !ok {
		return detailJSON(c, http.StatusBadRequest, "unknown product")
	}
	if s.wishlists[email] == nil {
		s.wishlists[email] = map[int64]struct{}{}
	}
	s.wishlists[email][req.ProductID] = struct{}{}

	return c.JSON(http.StatusOK, map[string]string{"message": "added"})
}

func (s *Server) removeFromWishlist(c echo.Context) error {
	email := subjectFromContext(c)

	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.wishlists[email], req.ProductID)
	return c.JSON(http.StatusOK, map[string]string{"message": "removed"})
}
