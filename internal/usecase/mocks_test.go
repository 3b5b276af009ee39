package usecase_test

import (
	"context"
	"testing"

	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	repo "petshop/internal/repository"
	"petshop/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// 共通ヘルパー
// =====================

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// DomainErrorのコードで分類を検証する
func assertDomainCode(t *testing.T, err error, want usecase.ErrorCode) {
	t.Helper()
	de, ok := usecase.AsDomainError(err)
	if assert.True(t, ok, "err=%v want DomainError", err) {
		assert.Equal(t, want, de.Code)
	}
}

// =====================
// Repository mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	args := m.Called(ctx, cartID, status)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) ListByCartIDAndCategory(ctx context.Context, cartID int64, category model.Category) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID, category)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, category model.Category, addQty int64, snap repo.LineSnapshot) error {
	args := m.Called(ctx, cartID, productID, category, addQty, snap)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type AttemptRepoMock struct{ mock.Mock }

func (m *AttemptRepoMock) FindByKey(ctx context.Context, userID int64, key string) (model.CheckoutAttempt, bool, error) {
	args := m.Called(ctx, userID, key)
	a, _ := args.Get(0).(model.CheckoutAttempt)
	return a, args.Bool(1), args.Error(2)
}

func (m *AttemptRepoMock) Create(ctx context.Context, attempt model.CheckoutAttempt) (int64, error) {
	args := m.Called(ctx, attempt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AttemptRepoMock) MarkCompleted(ctx context.Context, attemptID int64, orderID int64) error {
	args := m.Called(ctx, attemptID, orderID)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in usecase tests")
}

type AdjustmentRepoMock struct{ mock.Mock }

func (m *AdjustmentRepoMock) Create(ctx context.Context, adj model.StockAdjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *AdjustmentRepoMock) ListByProductID(ctx context.Context, productID int64) ([]model.StockAdjustment, error) {
	panic("not used in usecase tests")
}

// =====================
// TxManager mock
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	//呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	attempts  repo.CheckoutAttemptRepository
}

func (r *TxReposMock) Carts() repo.CartRepository              { return r.carts }
func (r *TxReposMock) CartItems() repo.CartItemRepository      { return r.cartItems }
func (r *TxReposMock) Attempts() repo.CheckoutAttemptRepository { return r.attempts }

// =====================
// Gateway mocks
// =====================

type CatalogGatewayMock struct{ mock.Mock }

func (m *CatalogGatewayMock) List(ctx context.Context, category model.Category) ([]model.Product, error) {
	args := m.Called(ctx, category)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *CatalogGatewayMock) ListAdmin(ctx context.Context, category model.Category) ([]model.Product, error) {
	args := m.Called(ctx, category)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *CatalogGatewayMock) FindByID(ctx context.Context, category model.Category, productID int64) (model.Product, error) {
	args := m.Called(ctx, category, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CatalogGatewayMock) SetStock(ctx context.Context, category model.Category, productID int64, stock int64) (model.Product, error) {
	args := m.Called(ctx, category, productID, stock)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CatalogGatewayMock) ToggleFavorite(ctx context.Context, category model.Category, productID int64) error {
	args := m.Called(ctx, category, productID)
	return args.Error(0)
}

type OrderGatewayMock struct{ mock.Mock }

func (m *OrderGatewayMock) Checkout(ctx context.Context, req gateway.CheckoutRequest, idempotencyKey string) (model.Order, error) {
	args := m.Called(ctx, req, idempotencyKey)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderGatewayMock) ListMine(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderGatewayMock) UpdateItems(ctx context.Context, orderID int64, items []model.OrderItem) (model.Order, error) {
	args := m.Called(ctx, orderID, items)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderGatewayMock) Cancel(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderGatewayMock) ListAdmin(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderGatewayMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (model.Order, error) {
	args := m.Called(ctx, orderID, status)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

type UserGatewayMock struct{ mock.Mock }

func (m *UserGatewayMock) Profile(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserGatewayMock) UpdateUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserGatewayMock) ListAdmin(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserGatewayMock) SetRole(ctx context.Context, userID int64, isAdmin bool) (model.User, error) {
	args := m.Called(ctx, userID, isAdmin)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}
