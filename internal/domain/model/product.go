package model

// 商品（/products が返す形）
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Stock       int64   `json:"stock"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`

	//一覧用サムネイル
	Thumbnail string   `json:"thumbnail"`
	Images    []string `json:"images"`

	VendorID           string   `json:"vendorId,omitempty"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	SKU                string   `json:"sku,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

// ページング付き商品一覧
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
