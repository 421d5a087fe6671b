package stub

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/anupamy140/final-ecommerce/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// ページングのクエリを読む（page=1始まり）
func pageParams(c echo.Context) (page int, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 12
	}
	return page, limit
}

// 呼び出し側でmuを取ること。ID昇順で返す。
func (s *Server) sortedProductsLocked() []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func paginate(products []model.Product, page int, limit int) model.ProductPage {
	total := int64(len(products))

	start := (page - 1) * limit
	if start > len(products) {
		start = len(products)
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}

	return model.ProductPage{
		Products: products[start:end],
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
}

func (s *Server) listProducts(c echo.Context) error {
	page, limit := pageParams(c)
	category := c.QueryParam("category")

	s.mu.Lock()
	all := s.sortedProductsLocked()
	s.mu.Unlock()

	if category != "" {
		filtered := all[:0:0]
		for _, p := range all {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		all = filtered
	}

	return c.JSON(http.StatusOK, paginate(all, page, limit))
}

func (s *Server) searchProducts(c echo.Context) error {
	page, limit := pageParams(c)
	searchStr := strings.ToLower(c.QueryParam("search_str"))

	s.mu.Lock()
	all := s.sortedProductsLocked()
	s.mu.Unlock()

	matched := all[:0:0]
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Title), searchStr) ||
			strings.Contains(strings.ToLower(p.Brand), searchStr) {
			matched = append(matched, p)
		}
	}

	return c.JSON(http.StatusOK, paginate(matched, page, limit))
}

func (s *Server) getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detailJSON(c, http.StatusBadRequest, "invalid id")
	}

	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()

	if !ok {
		return detailJSON(c, http.StatusNotFound, "not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) listCategories(c echo.Context) error {
	s.mu.Lock()
	seen := map[string]struct{}{}
	for _, p := range s.products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	s.mu.Unlock()

	categories := make([]string, 0, len(seen))
	for cat := range seen {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	return c.JSON(http.StatusOK, map[string][]string{"categories": categories})
}
