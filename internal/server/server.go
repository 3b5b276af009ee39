package server

import (
	"petshop/internal/config"
	"petshop/internal/handler"
	"petshop/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Handlers はルート登録に必要なハンドラ一式
type Handlers struct {
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Profile *handler.ProfileHandler
	Admin   *handler.AdminHandler
}

// New はechoを組み立てる（起動はしない。テストからも使う）
func New(cfg config.Config, log zerolog.Logger, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	h.Catalog.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Profile.RegisterRoutes(e, cfg)
	h.Admin.RegisterRoutes(e, cfg)

	return e
}

// Start はサーバーを起動する
func Start(cfg config.Config, log zerolog.Logger, h Handlers) error {
	e := New(cfg, log, h)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	return e.Start(addr)
}
