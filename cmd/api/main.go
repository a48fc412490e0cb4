package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"appupdate-service/internal/account"
	accountrepo "appupdate-service/internal/account/repo"
	"appupdate-service/internal/appmanage"
	"appupdate-service/internal/captcha"
	"appupdate-service/internal/channel"
	channelrepo "appupdate-service/internal/channel/repo"
	"appupdate-service/internal/router"
	"appupdate-service/internal/token"
	"appupdate-service/pkg/database"
	"appupdate-service/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init loggers
	logCfg := utilities.LogConfigFromEnv()
	lg, err := utilities.InitLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting appupdate-service")

	accessLg, err := utilities.InitAccessLogger(logCfg)
	if err != nil {
		sugar.Fatalf("access logger init: %v", err)
	}
	defer accessLg.Sync()

	// token config: missing secrets are fatal here, never per-request
	tokenCfg, err := token.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("token config: %v", err)
	}
	codec, err := token.NewCodec(tokenCfg)
	if err != nil {
		sugar.Fatalf("token codec: %v", err)
	}

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	accounts := accountrepo.NewAccountRepo(sqlxDB)
	channels := channelrepo.NewChannelRepo(sqlxDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := accounts.EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure users table: %v", err)
		}
		if err := channels.EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure app_channel table: %v", err)
		}
	}

	captchaSvc := captcha.NewService(captcha.NewStore(10*time.Minute, 10000))
	sugar.Infow("captcha store ready", "ttl", captchaSvc.TTL())

	authSvc := account.NewAuthService(accounts, captchaSvc, nil, codec)
	accountHandler := account.NewHandler(authSvc, captchaSvc, sugar)
	channelHandler := channel.NewHandler(channel.NewService(channels), sugar)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "app_manage"
	}
	appHandler := appmanage.NewHandler(uploadDir, sugar)

	authMW := account.RequireAuth(accounts, codec)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = "0.0.0.0:5800"
	}

	handler := router.RegisterRoutes(accessLg.Sugar(), accountHandler, channelHandler, appHandler, authMW)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		sugar.Infow("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
