package handler

import (
	"net/http"
	"strconv"

	"petshop/internal/config"
	"petshop/internal/domain/model"
	"petshop/internal/middleware"
	"petshop/internal/repository"
	"petshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者API。全ルートにJWT + 管理者ガード。
type AdminHandler struct {
	uc *usecase.AdminUsecase
}

// DI
func NewAdminHandler(uc *usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type AdjustStockRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	guard := []echo.MiddlewareFunc{middleware.AuthJWT(cfg), middleware.AdminRoleGuard()}

	e.GET("/admin/dashboard", h.dashboard, guard...)

	e.GET("/orders/admin", h.listOrders, guard...)
	e.PUT("/orders/admin/:id", h.updateOrderStatus, guard...)

	e.GET("/petfoods/admin", h.listProducts(model.CategoryFood), guard...)
	e.GET("/accessories/admin", h.listProducts(model.CategoryAccessory), guard...)
	e.PUT("/petfoods/:id", h.adjustStock(model.CategoryFood), guard...)
	e.PUT("/accessories/:id", h.adjustStock(model.CategoryAccessory), guard...)

	e.GET("/user/admin", h.listUsers, guard...)
	e.PUT("/user/:id/role", h.toggleUserRole, guard...)

	e.GET("/admin/audit", h.listAuditLogs, guard...)
	e.GET("/admin/stock-history/:id", h.listStockAdjustments, guard...)
}

func (h *AdminHandler) dashboard(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.LoadDashboard(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListOrders(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) updateOrderStatus(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateOrderStatus(c.Request().Context(), sess, orderID, usecase.UpdateOrderStatusInput{
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listProducts(category model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, ok := getSessionFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}

		out, err := h.uc.ListProducts(c.Request().Context(), sess, category)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, out)
	}
}

func (h *AdminHandler) adjustStock(category model.Category) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, ok := getSessionFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		}

		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		}

		var req AdjustStockRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}

		out, err := h.uc.AdjustStock(c.Request().Context(), sess, productID, usecase.AdjustStockInput{
			Category: category,
			Delta:    req.Delta,
			Reason:   req.Reason,
		})
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(http.StatusOK, out)
	}
}

func (h *AdminHandler) listUsers(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListUsers(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listAuditLogs(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var filter repository.AuditLogFilter
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		filter.Limit = limit
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), sess, filter)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listStockAdjustments(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.ListStockAdjustments(c.Request().Context(), sess, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) toggleUserRole(c echo.Context) error {
	sess, ok := getSessionFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.ToggleUserRole(c.Request().Context(), sess, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
