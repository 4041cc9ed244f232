package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pouicentral/internal/auth"
	"pouicentral/internal/cache"
	"pouicentral/internal/config"
	"pouicentral/internal/db"
	"pouicentral/internal/handler"
	"pouicentral/internal/model"
	"pouicentral/internal/repository"
	"pouicentral/internal/router"
	"pouicentral/internal/service"
	"pouicentral/internal/view"
)

func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatalf("template init: %v", err)
	}
	e.Renderer = renderer

	userRepo := repository.NewUserRepository(gormDB)
	hasher := auth.NewBcryptHasher()
	sessions := auth.NewSessionManager(cfg.CookieName, cfg.CookieSecret, cfg.SessionTTL, cfg.CookieSecure)

	accountService := service.NewAccountService(userRepo, hasher, cacheClient)
	accountHandler := handler.NewAccountHandler(accountService, sessions)

	router.Register(e, sessions, accountHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
