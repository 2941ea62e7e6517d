package main

import (
	"errors"
	"log"

	"github.com/joho/godotenv"

	"github.com/airings/pagecomments/config"
	"github.com/airings/pagecomments/routes"
	"github.com/airings/pagecomments/utils"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db, err := config.InitDatabase()
	if err != nil {
		if !errors.Is(err, config.ErrNoDatabaseURL) {
			utils.Sugar.Fatalf("database init failed: %v", err)
		}
		// Keep serving: every request answers the configuration error,
		// matching the serverless deployment this service replaces.
		utils.Sugar.Warnf("starting without a database: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
