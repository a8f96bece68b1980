package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "loanledger/internal/adapter/http"
	idemp "loanledger/internal/adapter/middleware"
	protocoladp "loanledger/internal/adapter/protocol"
	"loanledger/internal/adapter/repository/mysql"
	"loanledger/internal/config"
	assetDomain "loanledger/internal/domain/asset"
	eventDomain "loanledger/internal/domain/event"
	loanDomain "loanledger/internal/domain/loan"
	protocolDomain "loanledger/internal/domain/protocol"
	"loanledger/internal/infrastructure/cache"
	"loanledger/internal/infrastructure/db"
	lenderUC "loanledger/internal/usecase/lender"
	loanUC "loanledger/internal/usecase/loan"
	transferUC "loanledger/internal/usecase/transfer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := gdb.AutoMigrate(
		&loanDomain.Loan{},
		&assetDomain.Balance{},
		&eventDomain.Event{},
		&protocolDomain.Lender{},
	); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	uow := mysql.NewGormUoW(gdb)
	capability := protocoladp.NewCapability(rdb, mysql.NewLenderRepository(gdb))

	engine := loanUC.NewEngine(uow, capability, cfg.FactoryAccount)
	transfers := transferUC.NewUsecase(uow, cfg.FactoryAccount)
	lenders := lenderUC.NewUsecase(uow, cfg.FactoryAccount)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	h := httpadp.NewHandler()
	e.GET("/health", h.Health)

	api := e.Group("", idemp.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	httpadp.NewLoanHandler(engine).Register(api)
	httpadp.NewTransferHandler(transfers).Register(api)
	httpadp.NewLenderHandler(lenders).Register(api)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
