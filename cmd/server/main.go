package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avelarde/medtrack/internal/config"
	"github.com/avelarde/medtrack/internal/database"
	"github.com/avelarde/medtrack/internal/handler"
	"github.com/avelarde/medtrack/internal/queue"
	"github.com/avelarde/medtrack/internal/repository"
	"github.com/avelarde/medtrack/internal/router"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Nil when Redis is unreachable; cache and rate limiting then turn
	// into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	meds := repository.NewMedicationRepo(db)
	records := repository.NewConsumptionRepo(db)
	notifications := repository.NewNotificationRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	medH := handler.NewMedicationHandler(meds)
	consH := handler.NewConsumptionHandler(meds, records)
	notifH := handler.NewNotificationHandler(notifications)

	// Turns medication.changed events into notification rows. Runs its
	// own reconnect loop for the lifetime of the process.
	go func() {
		if err := queue.StartNotificationConsumer(notifications); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterAPI(e, authH, medH, consH, notifH, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
