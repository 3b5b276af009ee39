package model

import "github.com/shopspring/decimal"

// 注文明細。チェックアウト時点のカート明細スナップショット。
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Category  Category        `json:"category"`
	Image     string          `json:"image"`
}
