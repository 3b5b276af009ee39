package repository

import (
	"context"
	"errors"

	"petshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")
	//ユニーク制約違反（冪等性キーの衝突など）
	ErrDuplicateKey = errors.New("duplicate key")
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	//行ロック付き。トランザクション内でのみ呼ぶこと。
	FindActiveByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	//明細を全削除
	Clear(ctx context.Context, cartID int64) error
}

// 追加時点のスナップショット一式
type LineSnapshot struct {
	Name  string
	Price decimal.Decimal
	Image string
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	ListByCartIDAndCategory(ctx context.Context, cartID int64, category model.Category) ([]model.CartItem, error)
	//同一商品は数量加算。新規作成時だけスナップショットを書く。
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, category model.Category, addQty int64, snap LineSnapshot) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
}
