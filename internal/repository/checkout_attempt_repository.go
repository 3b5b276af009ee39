package repository

import (
	"context"

	"petshop/internal/domain/model"
)

// チェックアウト台帳。同じキーなら同じ注文を返すための記録。
type CheckoutAttemptRepository interface {
	//キーで検索（あればtrue）
	FindByKey(ctx context.Context, userID int64, key string) (model.CheckoutAttempt, bool, error)
	Create(ctx context.Context, attempt model.CheckoutAttempt) (int64, error)
	//注文ストアの注文IDを記録して完了にする
	MarkCompleted(ctx context.Context, attemptID int64, orderID int64) error
}
