package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。1商品1行（同一商品は数量加算）。
// 商品名・価格・画像は追加時点のスナップショットを必ず保存。
// カタログ側で値段が変わっても過去のカートには影響させない。
type CartItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64           `gorm:"not null;index" json:"cart_id"`
	ProductID         int64           `gorm:"not null;index" json:"product_id"`
	Category          Category        `gorm:"type:varchar(20);not null;index" json:"category"`
	NameSnapshot      string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:decimal(12,2);not null;column:unit_price_snapshot" json:"price"`
	ImageSnapshot     string          `gorm:"type:varchar(512)" json:"image"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 明細小計（price × quantity）
func (it CartItem) Subtotal() decimal.Decimal {
	return it.UnitPriceSnapshot.Mul(decimal.NewFromInt(it.Quantity))
}
