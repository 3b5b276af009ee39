package gateway

import (
	"context"
	"fmt"
	"net/http"

	"petshop/internal/domain/model"
)

type OrderHTTPGateway struct {
	c *Client
}

func NewOrderHTTPGateway(c *Client) *OrderHTTPGateway {
	return &OrderHTTPGateway{c: c}
}

func (g *OrderHTTPGateway) Checkout(ctx context.Context, req CheckoutRequest, idempotencyKey string) (model.Order, error) {
	var created model.Order
	headers := map[string]string{"X-Idempotency-Key": idempotencyKey}
	if err := g.c.do(ctx, http.MethodPost, "/orders/checkout", req, &created, headers); err != nil {
		return model.Order{}, err
	}
	return created, nil
}

func (g *OrderHTTPGateway) ListMine(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := g.c.do(ctx, http.MethodGet, "/orders", nil, &orders, nil); err != nil {
		return nil, err
	}
	return orders, nil
}

type updateItemsRequest struct {
	Items []model.OrderItem `json:"items"`
}

func (g *OrderHTTPGateway) UpdateItems(ctx context.Context, orderID int64, items []model.OrderItem) (model.Order, error) {
	var updated model.Order
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := g.c.do(ctx, http.MethodPut, path, updateItemsRequest{Items: items}, &updated, nil); err != nil {
		return model.Order{}, err
	}
	return updated, nil
}

func (g *OrderHTTPGateway) Cancel(ctx context.Context, orderID int64) error {
	path := fmt.Sprintf("/orders/%d", orderID)
	return g.c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (g *OrderHTTPGateway) ListAdmin(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := g.c.do(ctx, http.MethodGet, "/orders/admin", nil, &orders, nil); err != nil {
		return nil, err
	}
	return orders, nil
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func (g *OrderHTTPGateway) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (model.Order, error) {
	var updated model.Order
	path := fmt.Sprintf("/orders/admin/%d", orderID)
	if err := g.c.do(ctx, http.MethodPut, path, updateStatusRequest{Status: status}, &updated, nil); err != nil {
		return model.Order{}, err
	}
	return updated, nil
}
