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

// /petfoods, /accessories の公開カタログAPI
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	foods := e.Group("/petfoods")
	foods.Use(middleware.AuthJWT(cfg))
	foods.GET("", h.list(model.CategoryFood))
	foods.POST("/favorite/:id", h.toggleFavorite(model.CategoryFood))

	acc := e.Group("/accessories")
	acc.Use(middleware.AuthJWT(cfg))
	acc.GET("", h.list(model.CategoryAccessory))
	acc.POST("/favorite/:id", h.toggleFavorite(model.CategoryAccessory))
}

// 2カテゴリで同じ処理をするので、カテゴリを閉じ込めたハンドラを返す
func (h *CatalogHandler) list(category model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := getSessionFromContext(c); !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}

		out, err := h.uc.List(c.Request().Context(), category)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, out)
	}
}

func (h *CatalogHandler) toggleFavorite(category model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, ok := getSessionFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}

		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		}

		if err := h.uc.ToggleFavorite(c.Request().Context(), sess, category, productID); err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, SuccessResponse{Message: "favorite toggled"})
	}
}
