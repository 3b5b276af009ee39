package main

import (
	"petshop/internal/config"
	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	"petshop/internal/handler"
	"petshop/internal/infra/db"
	infraRepo "petshop/internal/infra/repository"
	"petshop/internal/server"
	"petshop/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envは開発環境だけ。無くても環境変数から読める
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := config.NewLogger(cfg)

	//DB接続（ローカルのカート・冪等性台帳・監査ログ用）
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.Cart{},
		&model.CartItem{},
		&model.CheckoutAttempt{},
		&model.AuditLog{},
		&model.StockAdjustment{},
	); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	//コラボレータのHTTPゲートウェイ
	client := gateway.NewClient(cfg.ShopAPIURL, cfg.ShopAPITimeout, log)
	catalogGW := gateway.NewCatalogHTTPGateway(client)
	orderGW := gateway.NewOrderHTTPGateway(client)
	userGW := gateway.NewUserHTTPGateway(client)

	//Repository（GORM実装）生成
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	adjustRepo := infraRepo.NewStockAdjustmentGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, catalogGW, log)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, orderGW, log)
	orderUC := usecase.NewOrderUsecase(orderGW, log)
	catalogUC := usecase.NewCatalogUsecase(catalogGW, log)
	profileUC := usecase.NewProfileUsecase(userGW, log)
	adminUC := usecase.NewAdminUsecase(orderGW, catalogGW, userGW, auditRepo, adjustRepo, log)

	//Handler生成
	handlers := server.Handlers{
		Catalog: handler.NewCatalogHandler(catalogUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(checkoutUC, orderUC),
		Profile: handler.NewProfileHandler(profileUC),
		Admin:   handler.NewAdminHandler(adminUC),
	}

	//Server起動
	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := server.Start(cfg, log, handlers); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
