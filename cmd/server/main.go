package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kafaat/ais-aviation-system-sub010/internal/api"
	"github.com/kafaat/ais-aviation-system-sub010/internal/cache"
	"github.com/kafaat/ais-aviation-system-sub010/internal/config"
	"github.com/kafaat/ais-aviation-system-sub010/internal/database"
	"github.com/kafaat/ais-aviation-system-sub010/internal/handler"
	"github.com/kafaat/ais-aviation-system-sub010/internal/pkg/metrics"
	"github.com/kafaat/ais-aviation-system-sub010/internal/queue"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
	"github.com/kafaat/ais-aviation-system-sub010/internal/router"
	"github.com/kafaat/ais-aviation-system-sub010/internal/util"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	if err := util.InitLogger(cfg.Env); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, seat map caching and rate limiting disabled")
	}
	seatMapCache := cache.NewSeatMapCache(rdb, cfg.SeatMapCacheTTL)
	m := metrics.New()

	templateRepo := repository.NewTemplateRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	flightRepo := repository.NewFlightRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	gateRepo := repository.NewGateRepo(db)

	h := router.Handlers{
		Health:       handler.NewHealthHandler(db, rdb),
		Template:     handler.NewTemplateHandler(templateRepo),
		Inventory:    handler.NewInventoryHandler(inventoryRepo, templateRepo, flightRepo, seatMapCache),
		SeatMap:      handler.NewSeatMapHandler(inventoryRepo, templateRepo, flightRepo, bookingRepo, seatMapCache),
		Assignment:   handler.NewAssignmentHandler(inventoryRepo, bookingRepo, flightRepo, seatMapCache, m),
		CheckIn:      handler.NewCheckInHandler(inventoryRepo, bookingRepo, flightRepo, seatMapCache, m),
		BoardingPass: handler.NewBoardingPassHandler(inventoryRepo, bookingRepo, flightRepo, gateRepo, seatMapCache, m),
	}

	// Background consumer mirrors completed check-ins into the ops log.
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartCheckInConsumer(); err != nil {
				logger.Error("checkin consumer stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("RABBITMQ_URL not set, check-in event consumer disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, h, m, cfg.JWTSecret, rdb, cfg.RateLimitPerMinute)

	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
