package model

// 出品者の識別情報（credential storeにJSONで保存する）
type Vendor struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	VendorID    string `json:"vendor_id"`
}
