package handler

import (
	"net/http"
	"strconv"

	"petshop/internal/config"
	"petshop/internal/domain/model"
	"petshop/internal/middleware"
	"petshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /petfoods/cart, /accessories/cart のHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// カートはユーザーごとに1つ。カテゴリ別のパスは同じカートの絞り込みビュー。
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	for _, category := range []model.Category{model.CategoryFood, model.CategoryAccessory} {
		prefix := "/petfoods/cart"
		if category == model.CategoryAccessory {
			prefix = "/accessories/cart"
		}

		g := e.Group(prefix)
		g.Use(middleware.AuthJWT(cfg))

		g.GET("", h.getCart(category))
		g.POST("", h.addItem(category))
		g.PUT("/:id", h.putItem)
		g.DELETE("/:id", h.deleteItem)
	}
}

func (h *CartHandler) getCart(category model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, ok := getSessionFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}

		out, err := h.uc.GetCart(c.Request().Context(), sess, &category)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, out)
	}
}

func (h *CartHandler) addItem(category model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, ok := getSessionFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}

		var req AddCartRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}

		out, err := h.uc.AddItem(c.Request().Context(), sess, usecase.AddItemInput{
			ProductID: req.ProductID,
			Category:  category,
			Quantity:  req.Quantity,
		})
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, out)
	}
}

func (h *CartHandler) putItem(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetQuantity(c.Request().Context(), sess, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), sess, itemID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
