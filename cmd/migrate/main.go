package main

import (
	"log"

	"doc-intelligence-be/internal/config"
	"doc-intelligence-be/internal/model"
	"doc-intelligence-be/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	log.Println("Running migrations...")
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Document{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")
}
