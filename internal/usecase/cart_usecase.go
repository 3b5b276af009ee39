package usecase

import (
	"context"
	"errors"
	"net/http"

	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	repo "petshop/internal/repository"
	"petshop/internal/session"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartUsecase はカートの業務ロジック。
// 明細はローカルDB、商品・在庫はカタログコラボレータから読む。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	catalog      gateway.CatalogGateway
	log          zerolog.Logger
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	catalog gateway.CatalogGateway,
	log zerolog.Logger,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		catalog:      catalog,
		log:          log,
	}
}

type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Category  model.Category  `json:"category"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int64           `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddItemInput struct {
	ProductID int64
	Category  model.Category
	Quantity  int64
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
// categoryを渡すとそのカテゴリの明細だけ返す（フード画面／アクセサリ画面用）。
func (u *CartUsecase) GetCart(ctx context.Context, sess session.Session, category *model.Category) (CartResponse, error) {
	if sess.UserID <= 0 {
		return CartResponse{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, sess.UserID)
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	return u.buildCartResponse(ctx, cart.ID, category)
}

// AddItem はカートに追加（同一商品は数量加算）。
// 既存数量＋追加数量が在庫スナップショットを超えるならネットワーク書き込み前に失敗。
func (u *CartUsecase) AddItem(ctx context.Context, sess session.Session, in AddItemInput) (CartResponse, error) {
	if sess.UserID <= 0 {
		return CartResponse{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid product_id")
	}
	if !in.Category.Valid() {
		return CartResponse{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid category")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewDomainError(CodeInvalidQuantity, http.StatusBadRequest, "quantity must be >= 1")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, sess.UserID)
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	//商品チェック（公開のみ）。在庫はここで取った値がスナップショット。
	p, err := u.catalog.FindByID(ctx, in.Category, in.ProductID)
	if errors.Is(err, gateway.ErrNotFound) {
		return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, fromGatewayError(err)
	}
	if !p.IsActive {
		return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "product not found")
	}

	//既存数量を調べて、合計が在庫を超えないか確認
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID == in.ProductID {
			existingQty = it.Quantity
			break
		}
	}

	if existingQty+in.Quantity > p.Stock {
		return CartResponse{}, NewDomainError(CodeInsufficientStock, http.StatusConflict, "not enough stock")
	}

	//Upsert（同一商品は加算）。スナップショットは追加時点の値。
	snap := repo.LineSnapshot{Name: p.Name, Price: p.Price, Image: p.Image}
	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Category, in.Quantity, snap); err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	return u.buildCartResponse(ctx, cart.ID, &in.Category)
}

// 数量変更（所有チェック＋在庫チェック）。0以下はRemoveItemを使う。
func (u *CartUsecase) SetQuantity(ctx context.Context, sess session.Session, cartItemID int64, qty int64) (CartResponse, error) {
	if sess.UserID <= 0 {
		return CartResponse{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid id")
	}
	if qty < 1 {
		return CartResponse{}, NewDomainError(CodeInvalidQuantity, http.StatusBadRequest, "quantity must be >= 1")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, sess.UserID)
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}
	if !owned {
		return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	//今わかっている在庫と突き合わせる
	p, err := u.catalog.FindByID(ctx, item.Category, item.ProductID)
	if errors.Is(err, gateway.ErrNotFound) {
		return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, fromGatewayError(err)
	}
	if qty > p.Stock {
		return CartResponse{}, NewDomainError(CodeInsufficientStock, http.StatusConflict, "not enough stock")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "not found")
		}
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, sess.UserID)
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}
	return u.buildCartResponse(ctx, cart.ID, &item.Category)
}

// 明細削除。在庫はチェックアウトまで減らさないのでカタログへは何も言わない。
func (u *CartUsecase) RemoveItem(ctx context.Context, sess session.Session, cartItemID int64) (CartResponse, error) {
	if sess.UserID <= 0 {
		return CartResponse{}, NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, sess.UserID)
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}
	if !owned {
		return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewDomainError(CodeNotFound, http.StatusNotFound, "not found")
		}
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, sess.UserID)
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}
	return u.buildCartResponse(ctx, cart.ID, &item.Category)
}

// 明細からCartResponseを作る。合計は Σ price×quantity を小数2桁に四捨五入。
// 並び順に依存しない純粋計算。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64, category *model.Category) (CartResponse, error) {
	var items []model.CartItem
	var err error

	if category != nil {
		items, err = u.cartItemRepo.ListByCartIDAndCategory(ctx, cartID, *category)
	} else {
		items, err = u.cartItemRepo.ListByCartID(ctx, cartID)
	}
	if err != nil {
		return CartResponse{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}

	respItems := make([]CartItemResponse, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Category:  it.Category,
			Name:      it.NameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Image:     it.ImageSnapshot,
			Quantity:  it.Quantity,
		})
		total = total.Add(it.Subtotal())
	}

	return CartResponse{Items: respItems, Total: total.Round(2)}, nil
}
