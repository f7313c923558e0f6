package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-cultivation/catalog"
	"go-cultivation/config"
	"go-cultivation/controller"
	"go-cultivation/logger"
	"go-cultivation/repository"
	"go-cultivation/router"
	"go-cultivation/service"
	"go-cultivation/utils"
	"go-cultivation/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := repository.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		return err
	}
	defer rdb.Close()
	store := repository.NewStore(rdb, cfg.TxMaxRetries, log)

	var ledger repository.Ledger = repository.NopLedger{}
	if cfg.MySQLDSN != "" {
		mysqlLedger, err := repository.OpenMySQLLedger(ctx, cfg.MySQLDSN)
		if err != nil {
			return err
		}
		ledger = mysqlLedger
		log.Info("trade ledger enabled")
	}
	defer ledger.Close()

	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	for _, w := range cat.Warnings() {
		log.Warn("catalog", zap.String("warning", w))
	}

	accounts := service.NewAccounts(store, log)
	market := service.NewMarket(store, cat, ledger, log)
	sects := service.NewSectRegistry(log)
	chat := service.NewChat(store, log)
	tokens := utils.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	hub := ws.NewHub(ctx, ws.HubConfig{
		Store:    store,
		Accounts: accounts,
		Market:   market,
		Sects:    sects,
		Chat:     chat,
		Catalog:  cat,
		Tokens:   tokens,
		Pacing:   cfg.CombatPacing,
		Log:      log,
	})
	ctl := controller.New(accounts, market, sects, chat, hub, tokens, log)

	r := gin.Default()

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	router.InitRouter(r, ctl, hub, tokens)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}
	stop()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	// Hijacked websocket connections are not tracked by Shutdown; the hub
	// context is already cancelled, so this only waits for final saves.
	hub.Wait()
	return nil
}
