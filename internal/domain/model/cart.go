package model

// カートの明細。
// product_id はカート内で一意（同一商品は数量加算でマージ）。
type CartLine struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int64   `json:"quantity"`
}

// /cart が返す形（明細は product_id と数量のみ）
type CartItemRef struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemRef `json:"items"`
	Total float64       `json:"total"`
}
