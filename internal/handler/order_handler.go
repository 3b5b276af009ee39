package handler

import (
	"net/http"
	"strconv"
	"strings"

	"petshop/internal/config"
	"petshop/internal/middleware"
	"petshop/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// /orders のHTTP（checkout・自分の注文）
type OrderHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	orderUC    *usecase.OrderUsecase
}

// DI
func NewOrderHandler(checkoutUC *usecase.CheckoutUsecase, orderUC *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{checkoutUC: checkoutUC, orderUC: orderUC}
}

type UpdateOrderItemsRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/checkout", h.checkout)
	g.GET("", h.listMine)
	g.PUT("/:id", h.updateItems)
	g.DELETE("/:id", h.cancel)
}

// X-Idempotency-Keyが無ければこちらで発行する。
// 同じキーでの再送は新しい注文を作らず、最初の注文を返す。
func (h *OrderHandler) checkout(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	key := strings.TrimSpace(c.Request().Header.Get("X-Idempotency-Key"))
	if key == "" {
		key = uuid.NewString()
	}

	out, err := h.checkoutUC.Checkout(c.Request().Context(), sess, key)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set("X-Idempotency-Key", key)
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.orderUC.ListMyOrders(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateItems(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateOrderItemsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	inputs := make([]usecase.UpdateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		inputs = append(inputs, usecase.UpdateOrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	out, err := h.orderUC.UpdateMyOrderItems(c.Request().Context(), sess, orderID, inputs)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.orderUC.CancelMyOrder(c.Request().Context(), sess, orderID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "order cancelled"})
}
