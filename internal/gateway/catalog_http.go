package gateway

import (
	"context"
	"fmt"
	"net/http"

	"petshop/internal/domain/model"
)

// カテゴリ→コラボレータのパスセグメント
func categorySegment(category model.Category) string {
	if category == model.CategoryAccessory {
		return "accessories"
	}
	return "petfoods"
}

type CatalogHTTPGateway struct {
	c *Client
}

func NewCatalogHTTPGateway(c *Client) *CatalogHTTPGateway {
	return &CatalogHTTPGateway{c: c}
}

func (g *CatalogHTTPGateway) List(ctx context.Context, category model.Category) ([]model.Product, error) {
	var items []model.Product
	if err := g.c.do(ctx, http.MethodGet, "/"+categorySegment(category), nil, &items, nil); err != nil {
		return nil, err
	}
	//カテゴリはパスで決まる。コラボレータが入れてこなくても埋める。
	for i := range items {
		items[i].Category = category
	}
	return items, nil
}

func (g *CatalogHTTPGateway) ListAdmin(ctx context.Context, category model.Category) ([]model.Product, error) {
	var items []model.Product
	if err := g.c.do(ctx, http.MethodGet, "/"+categorySegment(category)+"/admin", nil, &items, nil); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Category = category
	}
	return items, nil
}

// コラボレータに単品取得は無いので一覧から探す。
func (g *CatalogHTTPGateway) FindByID(ctx context.Context, category model.Category, productID int64) (model.Product, error) {
	items, err := g.List(ctx, category)
	if err != nil {
		return model.Product{}, err
	}
	for _, p := range items {
		if p.ID == productID {
			return p, nil
		}
	}
	return model.Product{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
}

type setStockRequest struct {
	Stock int64 `json:"stock"`
}

func (g *CatalogHTTPGateway) SetStock(ctx context.Context, category model.Category, productID int64, stock int64) (model.Product, error) {
	var updated model.Product
	path := fmt.Sprintf("/%s/%d", categorySegment(category), productID)
	if err := g.c.do(ctx, http.MethodPut, path, setStockRequest{Stock: stock}, &updated, nil); err != nil {
		return model.Product{}, err
	}
	updated.Category = category
	return updated, nil
}

func (g *CatalogHTTPGateway) ToggleFavorite(ctx context.Context, category model.Category, productID int64) error {
	path := fmt.Sprintf("/%s/favorite/%d", categorySegment(category), productID)
	return g.c.do(ctx, http.MethodPost, path, nil, nil, nil)
}
