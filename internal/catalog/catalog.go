package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/anupamy140/final-ecommerce/internal/api"
	"github.com/anupamy140/final-ecommerce/internal/domain/model"
)

// Service は商品カタログと注文履歴の読み取り。
// 商品・カテゴリは匿名で読める。注文履歴だけ認証付き。
type Service struct {
	client *api.Client
}

// DI
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// GET /products の入力
type ListInput struct {
	Page     int
	Limit    int
	Category string
}

// 商品一覧（ページング）
func (s *Service) List(ctx context.Context, in ListInput) (model.ProductPage, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 12
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(in.Page))
	q.Set("limit", strconv.Itoa(in.Limit))
	if in.Category != "" {
		q.Set("category", in.Category)
	}

	res, err := s.client.Public(ctx, http.MethodGet, "/products?"+q.Encode(), nil)
	if err != nil {
		return model.ProductPage{}, err
	}
	if res.StatusCode != http.StatusOK {
		return model.ProductPage{}, api.DecodeError(res)
	}

	var page model.ProductPage
	if err := api.DecodeJSON(res, &page); err != nil {
		return model.ProductPage{}, err
	}
	return page, nil
}

// 検索（search_strは部分一致）
func (s *Service) Search(ctx context.Context, searchStr string, page int, limit int) (model.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	q := url.Values{}
	q.Set("search_str", searchStr)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	res, err := s.client.Public(ctx, http.MethodGet, "/products/search?"+q.Encode(), nil)
	if err != nil {
		return model.ProductPage{}, err
	}
	if res.StatusCode != http.StatusOK {
		return model.ProductPage{}, api.DecodeError(res)
	}

	var out model.ProductPage
	if err := api.DecodeJSON(res, &out); err != nil {
		return model.ProductPage{}, err
	}
	return out, nil
}

// 商品詳細
func (s *Service) Product(ctx context.Context, id int64) (model.Product, error) {
	res, err := s.client.Public(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return model.Product{}, err
	}
	if res.StatusCode != http.StatusOK {
		return model.Product{}, api.DecodeError(res)
	}

	var p model.Product
	if err := api.DecodeJSON(res, &p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// カテゴリ一覧
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	res, err := s.client.Public(ctx, http.MethodGet, "/categories", nil)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, api.DecodeError(res)
	}

	var out struct {
		Categories []string `json:"categories"`
	}
	if err := api.DecodeJSON(res, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// 注文履歴（要ログイン）
func (s *Service) Orders(ctx context.Context) ([]model.Order, error) {
	res, err := s.client.Get(ctx, "/orders")
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, api.DecodeError(res)
	}

	var orders []model.Order
	if err := api.DecodeJSON(res, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
