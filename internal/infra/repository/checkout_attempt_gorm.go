package repository

import (
	"context"
	"errors"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQLのunique_violation
const pgUniqueViolation = "23505"

type CheckoutAttemptGormRepository struct {
	db *gorm.DB
}

func NewCheckoutAttemptGormRepository(db *gorm.DB) *CheckoutAttemptGormRepository {
	return &CheckoutAttemptGormRepository{db: db}
}

// キーで検索（同じキーなら同じ結果を返すための台帳引き）
func (r *CheckoutAttemptGormRepository) FindByKey(ctx context.Context, userID int64, key string) (model.CheckoutAttempt, bool, error) {
	var attempt model.CheckoutAttempt

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&attempt).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CheckoutAttempt{}, false, nil
	}
	if err != nil {
		return model.CheckoutAttempt{}, false, err
	}
	return attempt, true, nil
}

// 同じキーが同時に来てもユニーク制約で1件だけ通る。
// 負けた側にはErrDuplicateKeyを返す。
func (r *CheckoutAttemptGormRepository) Create(ctx context.Context, attempt model.CheckoutAttempt) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&attempt).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, repo.ErrDuplicateKey
		}
		return 0, err
	}
	return attempt.ID, nil
}

// 注文ストアのIDを書いて完了にする
func (r *CheckoutAttemptGormRepository) MarkCompleted(ctx context.Context, attemptID int64, orderID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CheckoutAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]any{
			"order_id": orderID,
			"status":   model.CheckoutAttemptCompleted,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
