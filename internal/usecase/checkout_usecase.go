package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	repo "petshop/internal/repository"
	"petshop/internal/session"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CheckoutUsecase は空でないカートを注文に変換する。
// 注文そのものは注文ストアコラボレータが持ち、ここは台帳とカートだけを持つ。
type CheckoutUsecase struct {
	tx     repo.TransactionManager
	orders gateway.OrderGateway
	log    zerolog.Logger
}

func NewCheckoutUsecase(tx repo.TransactionManager, orders gateway.OrderGateway, log zerolog.Logger) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, orders: orders, log: log}
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Category  model.Category  `json:"category"`
	Image     string          `json:"image"`
}

type OrderOutput struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	Status     string            `json:"status"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

// Checkout はACTIVEカートを注文として送信する。
// カートが空なら注文ストアには一切触れずEMPTY_CART。
// 送信が失敗したらローカルトランザクションごとロールバックし、カートは手つかずのまま。
func (u *CheckoutUsecase) Checkout(ctx context.Context, sess session.Session, idempotencyKey string) (OrderOutput, error) {
	if sess.UserID <= 0 {
		return OrderOutput{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(idempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid idempotency key")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じキーなら同じ注文を返す（再注文しない）
		existing, found, err := r.Attempts().FindByKey(ctx, sess.UserID, key)
		if err != nil {
			return WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
		}
		if found && existing.Status == model.CheckoutAttemptCompleted {
			o, err := u.findOrder(ctx, existing.OrderID)
			if err != nil {
				return err
			}
			out = toOrderOutput(o)
			return nil
		}

		//ACTIVEカートを行ロック付きで取得。同一ユーザーの同時チェックアウトは
		//ここで直列化され、2本目はコミット後のCHECKED_OUTを見てEMPTY_CARTになる。
		//無い・空なら注文ストアに触れる前に終わり。
		cart, err := r.Carts().FindActiveByUserIDForUpdate(ctx, sess.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewDomainError(CodeEmptyCart, http.StatusBadRequest, "cart is empty")
		}
		if err != nil {
			return WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
		}
		if len(cartItems) == 0 {
			return NewDomainError(CodeEmptyCart, http.StatusBadRequest, "cart is empty")
		}

		//スナップショット（後からカタログの価格が変わっても注文には響かない）
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		total := decimal.Zero
		for _, ci := range cartItems {
			orderItems = append(orderItems, model.OrderItem{
				ProductID: ci.ProductID,
				Name:      ci.NameSnapshot,
				Price:     ci.UnitPriceSnapshot,
				Quantity:  ci.Quantity,
				Category:  ci.Category,
				Image:     ci.ImageSnapshot,
			})
			total = total.Add(ci.Subtotal())
		}
		total = total.Round(2)

		//台帳に試行を記録。ユニークキーなので同時に同じキーが来ても1件だけ通る。
		attemptID, err := r.Attempts().Create(ctx, model.CheckoutAttempt{
			UserID:         sess.UserID,
			IdempotencyKey: key,
			Status:         model.CheckoutAttemptPending,
		})
		if errors.Is(err, repo.ErrDuplicateKey) {
			//同じキーと同時に競合した。もう一回引いて同じ結果を返す
			ex2, found2, err2 := r.Attempts().FindByKey(ctx, sess.UserID, key)
			if err2 == nil && found2 && ex2.Status == model.CheckoutAttemptCompleted {
				o, ferr := u.findOrder(ctx, ex2.OrderID)
				if ferr != nil {
					return ferr
				}
				out = toOrderOutput(o)
				return nil
			}
			return WrapDomainError(CodeCheckoutFailed, http.StatusConflict, "checkout already in flight", err)
		}
		if err != nil {
			return WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
		}

		//注文ストアへ送信。キーも一緒に渡すので、ここが成功してローカルが
		//落ちた場合でも再送は同じ注文に落ちる。
		created, err := u.orders.Checkout(ctx, gateway.CheckoutRequest{
			Items:      orderItems,
			TotalPrice: total,
		}, key)
		if err != nil {
			u.log.Warn().Err(err).Int64("user_id", sess.UserID).Msg("order submission failed")
			switch {
			case errors.Is(err, gateway.ErrConflict):
				//在庫の取り合いに負けた
				return WrapDomainError(CodeInsufficientStock, http.StatusConflict, "not enough stock", err)
			case errors.Is(err, gateway.ErrUnauthenticated):
				return WrapDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthenticated", err)
			default:
				return WrapDomainError(CodeCheckoutFailed, http.StatusBadGateway, "checkout failed", err)
			}
		}

		if err := r.Attempts().MarkCompleted(ctx, attemptID, created.ID); err != nil {
			return WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
		}

		//カートをCHECKED_OUTにして明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
		}

		out = toOrderOutput(created)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 台帳に記録済みの注文を注文ストアから引き直す。
// コラボレータに単品取得は無いので自分の一覧から探す。
func (u *CheckoutUsecase) findOrder(ctx context.Context, orderID int64) (model.Order, error) {
	orders, err := u.orders.ListMine(ctx)
	if err != nil {
		return model.Order{}, fromGatewayError(err)
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, NewDomainError(CodeNotFound, http.StatusNotFound, "order not found")
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Category:  it.Category,
			Image:     it.Image,
		})
	}

	return OrderOutput{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
		Items:      items,
	}
}
