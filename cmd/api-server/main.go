// Package main API Server 入口
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/apiserver/server"
	"admin-panel/internal/config"
	"admin-panel/internal/shared/storage/dbutil"
	postgresdriver "admin-panel/internal/shared/storage/driver/postgres"
	sqlitedriver "admin-panel/internal/shared/storage/driver/sqlite"
	"admin-panel/internal/shared/storage/repository"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 configs/{env}.yaml）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set, authentication is disabled")
	}

	// 打开数据库（sqlite 为默认的嵌入式形态，postgres 用于多实例部署）
	db, dialect, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := dialect.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	store := repository.NewStore(db, dialect)
	defer store.Close()
	log.Printf("Connected to %s database", cfg.DatabaseDriver)

	// 初始数据：角色、菜单、系统配置、管理员账号
	ctx := context.Background()
	if err := store.EnsureSeedData(ctx); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}
	if cfg.AdminPassword != "" {
		if err := auth.EnsureAdminUser(ctx, store, cfg.AdminUsername, cfg.AdminPassword, nil); err != nil {
			log.Fatalf("Failed to ensure admin user: %v", err)
		}
	} else {
		log.Println("ADMIN_PASSWORD not set, skipping admin user bootstrap")
	}

	authCfg := auth.Config{
		Secret:        cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		RefreshMaxAge: cfg.RefreshMaxAge,
	}
	h := server.NewHandler(store, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// openDatabase 按配置打开数据库连接并返回对应方言
func openDatabase(cfg *config.Config) (*sql.DB, dbutil.Dialect, error) {
	if cfg.DatabaseDriver == "postgres" {
		db, err := postgresdriver.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, postgresdriver.NewDialect(), nil
	}

	db, err := sqlitedriver.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return db, sqlitedriver.NewDialect(), nil
}
