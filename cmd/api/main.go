package main

import (
	"strings"

	"warehouse/internal/config"
	"warehouse/internal/domain/model"
	"warehouse/internal/handler"
	"warehouse/internal/infra/db"
	infraRepo "warehouse/internal/infra/repository"
	"warehouse/internal/obs"
	"warehouse/internal/server"
	"warehouse/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional outside development
	_ = godotenv.Load()

	// bootstrap logger so config failures report like every later failure
	logger := obs.NewLogger("development")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration load failed")
	}
	logger = obs.NewLogger(cfg.AppEnv)

	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Stock{},
	); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("connected to database")

	productRepo := infraRepo.NewProductGormRepository(gormDB)
	stockRepo := infraRepo.NewStockGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	uc := usecase.NewInventoryUsecase(productRepo, stockRepo, txm, logger)

	productH := handler.NewProductHandler(uc)
	orderH := handler.NewOrderHandler(uc)

	addr := ":" + strings.TrimPrefix(cfg.Port, ":")
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := server.Start(addr, productH, orderH); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
