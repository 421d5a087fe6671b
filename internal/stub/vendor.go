package stub

import (
	"net/http"
	"strconv"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"

	"github.com/labstack/echo/v4"
)

type vendorProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int64    `json:"stock"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
}

// 自分の出品だけ返す
func (s *Server) listVendorProducts(c echo.Context) error {
	email := subjectFromContext(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	vendorID := s.vendorIDLocked(email)
	products := make([]model.Product, 0)
	for _, p := range s.sortedProductsLocked() {
		if p.VendorID == vendorID {
			products = append(products, p)
		}
	}
	return c.JSON(http.StatusOK, map[string][]model.Product{"products": products})
}

func (s *Server) createVendorProduct(c echo.Context) error {
	email := subjectFromContext(c)

	var req vendorProductRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" || req.Price <= 0 {
		return detailJSON(c, http.StatusBadRequest, "title and positive price are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.Product{
		ID:          s.nextProductID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Brand:       req.Brand,
		Category:    req.Category,
		Thumbnail:   req.Thumbnail,
		Images:      req.Images,
		VendorID:    s.vendorIDLocked(email),
	}
	s.nextProductID++
	s.products[p.ID] = p

	return c.JSON(http.StatusCreated, p)
}

func (s *Server) updateVendorProduct(c echo.Context) error {
	email := subjectFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid id")
	}

	var req vendorProductRequest
	if err := c.Bind(&req); err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.VendorID != s.vendorIDLocked(email) {
		return detailJSON(c, http.StatusNotFound, "not found")
	}

	p.Title = req.Title
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	p.Brand = req.Brand
	p.Category = req.Category
	p.Thumbnail = req.Thumbnail
	p.Images = req.Images
	s.products[id] = p

	return c.JSON(http.StatusOK, p)
}

func (s *Server) deleteVendorProduct(c echo.Context) error {
	email := subjectFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.VendorID != s.vendorIDLocked(email) {
		return detailJSON(c, http.StatusNotFound, "not found")
	}
	delete(s.products, id)

	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

// 呼び出し側でmuを取ること。
func (s *Server) vendorIDLocked(email string) string {
	if v, ok := s.vendors[email]; ok {
		return v.VendorID
	}
	return ""
}
