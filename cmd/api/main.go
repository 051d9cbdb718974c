package main

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "expense-approval-service/internal/adapter/http"
	"expense-approval-service/internal/adapter/middleware"
	"expense-approval-service/internal/adapter/notify"
	mysqlrepo "expense-approval-service/internal/adapter/repository/mysql"
	"expense-approval-service/internal/adapter/sheets"
	"expense-approval-service/internal/config"
	"expense-approval-service/internal/infrastructure/cache"
	"expense-approval-service/internal/infrastructure/db"
	"expense-approval-service/internal/usecase/workflow"
	"expense-approval-service/pkg/logging"
)

func main() {
	logger := logging.Logger()
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		logger.Fatal("mysql unavailable", zap.Error(err))
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis unavailable", zap.Error(err))
	}

	ledger := mysqlrepo.NewRequestRepository(gdb)
	dir := notify.Directory{
		Head:    cfg.HeadChatIDs,
		Finance: cfg.FinanceChatIDs,
		Payers:  cfg.PayerChatIDs,
	}
	sink := notify.NewTelegramSink(cfg.TelegramToken, logger)
	exporter := sheets.NewWebhookExporter(cfg.SheetsWebhookURL, logger)
	co := workflow.NewCoordinator(ledger, dir, sink, exporter, logger,
		time.Duration(cfg.LockWaitMS)*time.Millisecond)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	h := httpadp.NewHandler()
	rh := httpadp.NewRequestHandler(co)

	e.GET("/health", h.Health)
	e.GET("/requests/unsettled", rh.ListUnsettled)
	e.GET("/requests/:request_id", rh.Get)

	idemTTL := time.Duration(cfg.IdempTTLSecs) * time.Second
	mut := e.Group("", middleware.Idempotency(rdb, idemTTL))
	mut.POST("/requests", rh.Submit)
	mut.POST("/requests/:request_id/actions", rh.Act)
	mut.POST("/requests/:request_id/pay", rh.Pay)

	addr := ":" + cfg.AppPort
	logger.Info("listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
