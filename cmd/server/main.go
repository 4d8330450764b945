package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/AndriiVeremi/contacts-api/internal/cache"
	"github.com/AndriiVeremi/contacts-api/internal/config"
	"github.com/AndriiVeremi/contacts-api/internal/events"
	"github.com/AndriiVeremi/contacts-api/internal/httpserver"
	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/mail"
	"github.com/AndriiVeremi/contacts-api/internal/repo"
	"github.com/AndriiVeremi/contacts-api/internal/search"
	"github.com/AndriiVeremi/contacts-api/internal/service"
	"github.com/AndriiVeremi/contacts-api/internal/upload"
	"github.com/AndriiVeremi/contacts-api/pkg/db"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	gormDB, err := db.Open(context.Background(), configuration.DATABASE_URL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     configuration.REDIS_ADDR,
		Password: configuration.REDIS_PASSWORD,
		DB:       configuration.REDIS_DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	repository := repo.New(gormDB)
	userCache := cache.NewUserCache(rdb)
	denyList := cache.NewDenyList(rdb)

	authSvc := service.NewAuthService(
		repository,
		userCache,
		denyList,
		[]byte(configuration.JWT_SECRET),
		time.Duration(configuration.ACCESS_TOKEN_EXPIRE_MINUTES)*time.Minute,
		time.Duration(configuration.REFRESH_TOKEN_EXPIRE_DAYS)*24*time.Hour,
	)
	if configuration.MAIL_HOST != "" {
		authSvc.Mail = mail.NewSender(
			configuration.MAIL_HOST,
			configuration.MAIL_PORT,
			configuration.MAIL_USERNAME,
			configuration.MAIL_PASSWORD,
			configuration.MAIL_FROM,
			configuration.MAIL_FROM_NAME,
		)
	}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(configuration.KAFKA_ADDRESS)
		authSvc.Pub = producer
	}

	userSvc := service.NewUserService(repository, userCache)
	if configuration.CLD_NAME != "" {
		uploader, err := upload.New(configuration.CLD_NAME, configuration.CLD_API_KEY, configuration.CLD_API_SECRET)
		if err != nil {
			log.Fatalf("cloudinary init error: %v", err)
		}
		userSvc.Uploader = uploader
	}

	contactSvc := service.NewContactService(repository)
	contactSvc.Pub = authSvc.Pub
	if configuration.ES_URL != "" {
		esClient, err := search.NewClient(configuration.ES_URL, configuration.ES_USER, configuration.ES_PASSWORD)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		contactSvc.Searcher = search.NewContacts(esClient)
	}

	resetSvc := service.NewPasswordResetService(repository, userCache, authSvc.Mail)

	cleanup, err := service.StartCleanup(repository, logger)
	if err != nil {
		log.Fatalf("cleanup scheduler error: %v", err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(httpserver.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		DB:             gormDB,
		Auth:           authSvc,
		AuthHandler:    &httpserver.AuthHandler{Auth: authSvc, Reset: resetSvc},
		UserHandler:    &httpserver.UserHandler{Users: userSvc, Auth: authSvc},
		ContactHandler: &httpserver.ContactHandler{Contacts: contactSvc},
	})

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	cleanup.Stop()

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}
	if err := rdb.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
