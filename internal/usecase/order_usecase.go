package usecase

import (
	"context"
	"errors"
	"net/http"

	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	"petshop/internal/session"

	"github.com/rs/zerolog"
)

// OrderUsecase は自分の注文履歴まわり。注文の持ち主は注文ストア。
type OrderUsecase struct {
	orders gateway.OrderGateway
	log    zerolog.Logger
}

func NewOrderUsecase(orders gateway.OrderGateway, log zerolog.Logger) *OrderUsecase {
	return &OrderUsecase{orders: orders, log: log}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, sess session.Session) ([]OrderOutput, error) {
	if sess.UserID <= 0 {
		return []OrderOutput{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}

	orders, err := u.orders.ListMine(ctx)
	if err != nil {
		return []OrderOutput{}, fromGatewayError(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

// CancelMyOrder はPENDINGの自分の注文を取り消す。
// 削除ではなくPENDING→CANCELLEDの遷移として扱う（wireは旧来のDELETE）。
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, sess session.Session, orderID int64) error {
	if sess.UserID <= 0 {
		return NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid id")
	}

	o, err := u.findMyOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !o.Status.CanTransitionTo(model.OrderStatusCancelled) {
		return NewDomainError(CodeIllegalTransition, http.StatusConflict, "order can no longer be cancelled")
	}

	if err := u.orders.Cancel(ctx, orderID); err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			//先に出荷済みなど、向こうでも遷移が拒否された
			return WrapDomainError(CodeIllegalTransition, http.StatusConflict, "order can no longer be cancelled", err)
		}
		return fromGatewayError(err)
	}
	return nil
}

type UpdateOrderItemInput struct {
	ProductID int64
	Quantity  int64
}

// UpdateMyOrderItems はPENDINGの間だけ明細の数量を差し替える。
// 合計は差し替え後の明細から計算し直される。
func (u *OrderUsecase) UpdateMyOrderItems(ctx context.Context, sess session.Session, orderID int64, inputs []UpdateOrderItemInput) (OrderOutput, error) {
	if sess.UserID <= 0 {
		return OrderOutput{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid id")
	}
	if len(inputs) == 0 {
		return OrderOutput{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "items required")
	}
	for _, in := range inputs {
		if in.Quantity < 1 {
			return OrderOutput{}, NewDomainError(CodeInvalidQuantity, http.StatusBadRequest, "quantity must be >= 1")
		}
	}

	o, err := u.findMyOrder(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}
	if o.Status != model.OrderStatusPending {
		return OrderOutput{}, NewDomainError(CodeIllegalTransition, http.StatusConflict, "only pending orders can be edited")
	}

	//既存明細に数量を当てる。知らない商品は受け付けない。
	byProduct := make(map[int64]model.OrderItem, len(o.Items))
	for _, it := range o.Items {
		byProduct[it.ProductID] = it
	}

	items := make([]model.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		it, ok := byProduct[in.ProductID]
		if !ok {
			return OrderOutput{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "unknown product in order")
		}
		it.Quantity = in.Quantity
		items = append(items, it)
	}

	updated, err := u.orders.UpdateItems(ctx, orderID, items)
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			return OrderOutput{}, WrapDomainError(CodeIllegalTransition, http.StatusConflict, "only pending orders can be edited", err)
		}
		return OrderOutput{}, fromGatewayError(err)
	}
	return toOrderOutput(updated), nil
}

// 自分の注文を一覧から探す。他人の注文は「存在しない扱い」になる。
func (u *OrderUsecase) findMyOrder(ctx context.Context, orderID int64) (model.Order, error) {
	orders, err := u.orders.ListMine(ctx)
	if err != nil {
		return model.Order{}, fromGatewayError(err)
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, NewDomainError(CodeNotFound, http.StatusNotFound, "not found")
}
