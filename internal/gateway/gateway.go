package gateway

import (
	"context"

	"petshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// カタログコラボレータ（在庫・商品）との約束。
type CatalogGateway interface {
	//公開一覧
	List(ctx context.Context, category model.Category) ([]model.Product, error)
	//管理者用一覧（非公開商品も含む）
	ListAdmin(ctx context.Context, category model.Category) ([]model.Product, error)
	//1件取得。コラボレータに単品APIは無いので一覧から探す。
	FindByID(ctx context.Context, category model.Category, productID int64) (model.Product, error)
	//在庫の絶対値を書き込む
	SetStock(ctx context.Context, category model.Category, productID int64, stock int64) (model.Product, error)
	//お気に入りの切り替え
	ToggleFavorite(ctx context.Context, category model.Category, productID int64) error
}

// チェックアウト送信のwire形式（コラボレータ契約に合わせてcamelCase）。
type CheckoutRequest struct {
	Items      []model.OrderItem `json:"items"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

// 注文ストアコラボレータとの約束。
type OrderGateway interface {
	//注文を作成。idempotencyKeyはX-Idempotency-Keyヘッダで渡す。
	Checkout(ctx context.Context, req CheckoutRequest, idempotencyKey string) (model.Order, error)
	//自分の注文一覧
	ListMine(ctx context.Context) ([]model.Order, error)
	//PENDING注文の明細を差し替える
	UpdateItems(ctx context.Context, orderID int64, items []model.OrderItem) (model.Order, error)
	//自分の注文のキャンセル（wireは旧来のDELETE、意味はPENDING→CANCELLED遷移）
	Cancel(ctx context.Context, orderID int64) error
	//管理者用の全注文一覧
	ListAdmin(ctx context.Context) ([]model.Order, error)
	//管理者によるステータス更新
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (model.Order, error)
}

// ユーザーストアコラボレータとの約束。
type UserGateway interface {
	//自分のプロフィール
	Profile(ctx context.Context) (model.User, error)
	//ユーザー名の変更
	UpdateUsername(ctx context.Context, username string) (model.User, error)
	//管理者用のユーザー一覧
	ListAdmin(ctx context.Context) ([]model.User, error)
	//isAdminの書き込み
	SetRole(ctx context.Context, userID int64, isAdmin bool) (model.User, error)
}
