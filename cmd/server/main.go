package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellaleprasann20/Github-Clone/internal/api"
	"github.com/bellaleprasann20/Github-Clone/internal/config"
	"github.com/bellaleprasann20/Github-Clone/internal/database"
	"github.com/bellaleprasann20/Github-Clone/internal/services"
	"github.com/bellaleprasann20/Github-Clone/internal/utils"
)

func main() {
	logger, err := utils.InitLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	logger.Info("Initializing storage service")
	storage, err := services.ConnectMinio(cfg.MinIOURL, cfg.MinIOUser, cfg.MinIOPass, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	logger.Info("Storage service initialized successfully")

	api.StartServer(cfg, db, storage, logger)
}
