package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品カテゴリ（フード / アクセサリ）
type Category string

const (
	CategoryFood      Category = "food"
	CategoryAccessory Category = "accessory"
)

func (c Category) Valid() bool {
	return c == CategoryFood || c == CategoryAccessory
}

// 商品はカタログサービスが持ち主。ここではJSONを読み書きするだけ。
// Stockは取得時点の在庫スナップショット。
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	IsFavorite  bool            `json:"is_favorite"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
