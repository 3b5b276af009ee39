package usecase_test

import (
	"context"
	"testing"

	"petshop/internal/domain/model"
	repo "petshop/internal/repository"
	"petshop/internal/session"
	"petshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sessUser() session.Session {
	return session.Session{UserID: 1, Username: "taro", Token: "tok"}
}

// =====================
// AddItem tests
// =====================

func TestCartUsecase_AddItem_InvalidQuantity(t *testing.T) {
	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	for _, qty := range []int64{0, -1} {
		_, err := uc.AddItem(context.Background(), sessUser(), usecase.AddItemInput{
			ProductID: 10,
			Category:  model.CategoryFood,
			Quantity:  qty,
		})
		assertDomainCode(t, err, usecase.CodeInvalidQuantity)
	}

	//数量が不正ならDBにもカタログにも触らない
	catalog.AssertExpectations(t)
	items.AssertExpectations(t)
}

func TestCartUsecase_AddItem_Success(t *testing.T) {
	ctx := context.Background()

	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}
	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)

	p := model.Product{
		ID:       10,
		Name:     "サーモンフード",
		Price:    decimal.RequireFromString("12.00"),
		Stock:    5,
		Category: model.CategoryFood,
		IsActive: true,
	}
	catalog.On("FindByID", mock.Anything, model.CategoryFood, int64(10)).Return(p, nil)

	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)
	snap := repo.LineSnapshot{Name: p.Name, Price: p.Price, Image: p.Image}
	items.On("UpsertByCartAndProduct", mock.Anything, int64(5), int64(10), model.CategoryFood, int64(2), snap).Return(nil)
	items.On("ListByCartIDAndCategory", mock.Anything, int64(5), model.CategoryFood).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 10, Category: model.CategoryFood, NameSnapshot: p.Name, UnitPriceSnapshot: p.Price, Quantity: 2},
	}, nil)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	out, err := uc.AddItem(ctx, sessUser(), usecase.AddItemInput{
		ProductID: 10,
		Category:  model.CategoryFood,
		Quantity:  2,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.True(t, out.Total.Equal(decimal.RequireFromString("24.00")), "total=%s", out.Total)

	carts.AssertExpectations(t)
	items.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

// 既存2個＋追加2個 > 在庫3 は追加自体を拒否。カートは変わらない。
func TestCartUsecase_AddItem_InsufficientStock(t *testing.T) {
	ctx := context.Background()

	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}
	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)

	p := model.Product{ID: 10, Name: "フード", Price: decimal.RequireFromString("12.00"), Stock: 3, Category: model.CategoryFood, IsActive: true}
	catalog.On("FindByID", mock.Anything, model.CategoryFood, int64(10)).Return(p, nil)

	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 10, Quantity: 2},
	}, nil)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	_, err := uc.AddItem(ctx, sessUser(), usecase.AddItemInput{
		ProductID: 10,
		Category:  model.CategoryFood,
		Quantity:  2,
	})
	assertDomainCode(t, err, usecase.CodeInsufficientStock)

	//Upsertは呼ばれないこと
	items.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItem_InactiveProduct(t *testing.T) {
	ctx := context.Background()

	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5}, nil)
	catalog.On("FindByID", mock.Anything, model.CategoryFood, int64(10)).Return(model.Product{ID: 10, IsActive: false}, nil)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	_, err := uc.AddItem(ctx, sessUser(), usecase.AddItemInput{ProductID: 10, Category: model.CategoryFood, Quantity: 1})
	assertDomainCode(t, err, usecase.CodeNotFound)
}

// =====================
// GetCart / total tests
// =====================

// フード2個@12.00＋アクセサリ1個@10.00 → 34.00
func TestCartUsecase_GetCart_TotalAcrossCategories(t *testing.T) {
	ctx := context.Background()

	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5}, nil)
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, ProductID: 10, Category: model.CategoryFood, NameSnapshot: "フードA", UnitPriceSnapshot: decimal.RequireFromString("12.00"), Quantity: 2},
		{ID: 2, ProductID: 20, Category: model.CategoryAccessory, NameSnapshot: "首輪B", UnitPriceSnapshot: decimal.RequireFromString("10.00"), Quantity: 1},
	}, nil)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	out, err := uc.GetCart(ctx, sessUser(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(out.Items))
	assert.True(t, out.Total.Equal(decimal.RequireFromString("34.00")), "total=%s", out.Total)
}

func TestCartUsecase_GetCart_EmptyCartTotalZero(t *testing.T) {
	ctx := context.Background()

	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5}, nil)
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	out, err := uc.GetCart(ctx, sessUser(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
	assert.True(t, out.Total.IsZero())
}

// =====================
// SetQuantity tests
// =====================

func TestCartUsecase_SetQuantity_InvalidQuantity(t *testing.T) {
	uc := usecase.NewCartUsecase(new(CartRepoMock), new(CartItemRepoMock), new(CatalogGatewayMock), testLogger())

	_, err := uc.SetQuantity(context.Background(), sessUser(), 1, 0)
	assertDomainCode(t, err, usecase.CodeInvalidQuantity)
}

func TestCartUsecase_SetQuantity_OverStock(t *testing.T) {
	ctx := context.Background()

	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	items.On("IsOwnedByUser", mock.Anything, int64(1), int64(1)).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(1)).Return(model.CartItem{
		ID: 1, CartID: 5, ProductID: 10, Category: model.CategoryFood, Quantity: 2,
	}, nil)
	catalog.On("FindByID", mock.Anything, model.CategoryFood, int64(10)).Return(model.Product{
		ID: 10, Stock: 3, IsActive: true,
	}, nil)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	_, err := uc.SetQuantity(ctx, sessUser(), 1, 4)
	assertDomainCode(t, err, usecase.CodeInsufficientStock)

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_SetQuantity_NotOwned(t *testing.T) {
	ctx := context.Background()

	items := new(CartItemRepoMock)
	items.On("IsOwnedByUser", mock.Anything, int64(9), int64(1)).Return(false, nil)

	uc := usecase.NewCartUsecase(new(CartRepoMock), items, new(CatalogGatewayMock), testLogger())

	_, err := uc.SetQuantity(ctx, sessUser(), 9, 2)
	assertDomainCode(t, err, usecase.CodeNotFound)
}

// =====================
// RemoveItem tests
// =====================

// 削除はローカルだけで完結する。カタログには一切問い合わせない。
func TestCartUsecase_RemoveItem_NoCatalogCall(t *testing.T) {
	ctx := context.Background()

	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	catalog := new(CatalogGatewayMock)

	items.On("IsOwnedByUser", mock.Anything, int64(1), int64(1)).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(1)).Return(model.CartItem{
		ID: 1, CartID: 5, ProductID: 10, Category: model.CategoryFood, Quantity: 2,
	}, nil)
	items.On("DeleteByID", mock.Anything, int64(1)).Return(nil)
	carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5}, nil)
	items.On("ListByCartIDAndCategory", mock.Anything, int64(5), model.CategoryFood).Return([]model.CartItem{}, nil)

	uc := usecase.NewCartUsecase(carts, items, catalog, testLogger())

	out, err := uc.RemoveItem(ctx, sessUser(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	//カタログには触らない
	catalog.AssertExpectations(t)
	catalog.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	items.AssertExpectations(t)
}
