package usecase_test

import (
	"context"
	"testing"

	"petshop/internal/domain/model"
	"petshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOrderUsecase_ListMyOrders(t *testing.T) {
	orders := new(OrderGatewayMock)
	orders.On("ListMine", mock.Anything).Return([]model.Order{
		{ID: 1, Status: model.OrderStatusPending, TotalPrice: decimal.RequireFromString("24.00")},
		{ID: 2, Status: model.OrderStatusDelivered, TotalPrice: decimal.RequireFromString("10.00")},
	}, nil)

	uc := usecase.NewOrderUsecase(orders, testLogger())

	outs, err := uc.ListMyOrders(context.Background(), sessUser())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))
	assert.Equal(t, "PENDING", outs[0].Status)
}

func TestOrderUsecase_CancelMyOrder_Pending(t *testing.T) {
	orders := new(OrderGatewayMock)
	orders.On("ListMine", mock.Anything).Return([]model.Order{
		{ID: 1, Status: model.OrderStatusPending},
	}, nil)
	orders.On("Cancel", mock.Anything, int64(1)).Return(nil)

	uc := usecase.NewOrderUsecase(orders, testLogger())

	err := uc.CancelMyOrder(context.Background(), sessUser(), 1)
	assert.NoError(t, err)

	orders.AssertExpectations(t)
}

// 配達済みはキャンセル不可。ネットワークにも出ない。
func TestOrderUsecase_CancelMyOrder_DeliveredRejected(t *testing.T) {
	orders := new(OrderGatewayMock)
	orders.On("ListMine", mock.Anything).Return([]model.Order{
		{ID: 1, Status: model.OrderStatusDelivered},
	}, nil)

	uc := usecase.NewOrderUsecase(orders, testLogger())

	err := uc.CancelMyOrder(context.Background(), sessUser(), 1)
	assertDomainCode(t, err, usecase.CodeIllegalTransition)

	orders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

// 他人の注文は存在しない扱い
func TestOrderUsecase_CancelMyOrder_NotMine(t *testing.T) {
	orders := new(OrderGatewayMock)
	orders.On("ListMine", mock.Anything).Return([]model.Order{}, nil)

	uc := usecase.NewOrderUsecase(orders, testLogger())

	err := uc.CancelMyOrder(context.Background(), sessUser(), 42)
	assertDomainCode(t, err, usecase.CodeNotFound)
}

func TestOrderUsecase_UpdateMyOrderItems_Pending(t *testing.T) {
	orders := new(OrderGatewayMock)

	existing := model.Order{
		ID:     1,
		Status: model.OrderStatusPending,
		Items: []model.OrderItem{
			{ProductID: 10, Name: "フード", Price: decimal.RequireFromString("12.00"), Quantity: 2},
		},
	}
	orders.On("ListMine", mock.Anything).Return([]model.Order{existing}, nil)
	orders.On("UpdateItems", mock.Anything, int64(1), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].ProductID == 10 && items[0].Quantity == 5
	})).Return(model.Order{ID: 1, Status: model.OrderStatusPending, TotalPrice: decimal.RequireFromString("60.00")}, nil)

	uc := usecase.NewOrderUsecase(orders, testLogger())

	out, err := uc.UpdateMyOrderItems(context.Background(), sessUser(), 1, []usecase.UpdateOrderItemInput{
		{ProductID: 10, Quantity: 5},
	})
	assert.NoError(t, err)
	assert.True(t, out.TotalPrice.Equal(decimal.RequireFromString("60.00")))
}

func TestOrderUsecase_UpdateMyOrderItems_NonPendingRejected(t *testing.T) {
	orders := new(OrderGatewayMock)
	orders.On("ListMine", mock.Anything).Return([]model.Order{
		{ID: 1, Status: model.OrderStatusCancelled},
	}, nil)

	uc := usecase.NewOrderUsecase(orders, testLogger())

	_, err := uc.UpdateMyOrderItems(context.Background(), sessUser(), 1, []usecase.UpdateOrderItemInput{
		{ProductID: 10, Quantity: 1},
	})
	assertDomainCode(t, err, usecase.CodeIllegalTransition)

	orders.AssertNotCalled(t, "UpdateItems", mock.Anything, mock.Anything, mock.Anything)
}

// 注文に無い商品は受け付けない
func TestOrderUsecase_UpdateMyOrderItems_UnknownProduct(t *testing.T) {
	orders := new(OrderGatewayMock)
	orders.On("ListMine", mock.Anything).Return([]model.Order{
		{ID: 1, Status: model.OrderStatusPending, Items: []model.OrderItem{{ProductID: 10, Quantity: 1}}},
	}, nil)

	uc := usecase.NewOrderUsecase(orders, testLogger())

	_, err := uc.UpdateMyOrderItems(context.Background(), sessUser(), 1, []usecase.UpdateOrderItemInput{
		{ProductID: 99, Quantity: 1},
	})
	assertDomainCode(t, err, usecase.CodeInvalidInput)
}

func TestOrderUsecase_UpdateMyOrderItems_InvalidQuantity(t *testing.T) {
	orders := new(OrderGatewayMock)
	uc := usecase.NewOrderUsecase(orders, testLogger())

	_, err := uc.UpdateMyOrderItems(context.Background(), sessUser(), 1, []usecase.UpdateOrderItemInput{
		{ProductID: 10, Quantity: 0},
	})
	assertDomainCode(t, err, usecase.CodeInvalidQuantity)

	orders.AssertNotCalled(t, "ListMine", mock.Anything)
}
