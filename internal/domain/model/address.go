package model

// 配送先住所
type Address struct {
	ID         string `json:"id"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`

	//このユーザーのデフォルト住所か（複数trueはサーバー側で弾く）
	IsDefault bool `json:"isDefault"`
}

// 住所の作成・更新入力（idとisDefaultはサーバーが管理）
type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}
