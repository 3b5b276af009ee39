package model

import "time"

type CheckoutAttemptStatus string

const (
	CheckoutAttemptPending   CheckoutAttemptStatus = "PENDING"
	CheckoutAttemptCompleted CheckoutAttemptStatus = "COMPLETED"
)

// チェックアウト試行の台帳。
// 同じキーの再送では注文を作り直さず、記録済みの注文を返す。
type CheckoutAttempt struct {
	ID             int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	//キーの一意性はユーザー内。他ユーザーが同じキーを使っても衝突しない。
	UserID         int64                 `gorm:"not null;uniqueIndex:idx_user_key" json:"user_id"`
	IdempotencyKey string                `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_key" json:"-"`
	OrderID        int64                 `gorm:"not null;default:0" json:"order_id"`
	Status         CheckoutAttemptStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt      time.Time             `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
