package model

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Quantity  int64   `json:"quantity"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// 注文履歴（/orders が返す形）
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}
