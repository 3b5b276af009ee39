package usecase

import (
	"context"
	"net/http"

	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	"petshop/internal/session"

	"github.com/rs/zerolog"
)

// CatalogUsecase はカタログサービスの素通しに近いが、
// カテゴリ検証とエラー変換はここでやる。
type CatalogUsecase struct {
	catalog gateway.CatalogGateway
	log     zerolog.Logger
}

func NewCatalogUsecase(catalog gateway.CatalogGateway, log zerolog.Logger) *CatalogUsecase {
	return &CatalogUsecase{catalog: catalog, log: log}
}

// 公開中の商品一覧
func (u *CatalogUsecase) List(ctx context.Context, category model.Category) ([]model.Product, error) {
	if !category.Valid() {
		return []model.Product{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid category")
	}
	items, err := u.catalog.List(ctx, category)
	if err != nil {
		return []model.Product{}, fromGatewayError(err)
	}
	return items, nil
}

// お気に入りの切り替え（ログイン必須）
func (u *CatalogUsecase) ToggleFavorite(ctx context.Context, sess session.Session, category model.Category, productID int64) error {
	if sess.UserID <= 0 {
		return NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	if !category.Valid() {
		return NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid category")
	}
	if productID <= 0 {
		return NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid product id")
	}
	if err := u.catalog.ToggleFavorite(ctx, category, productID); err != nil {
		return fromGatewayError(err)
	}
	return nil
}
