package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/auth"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/config"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/handlers"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/logger"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/mailer"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/metrics"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/middleware"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/oauth"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/repository"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/routes"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/services"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/storage"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/stream"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/sweeper"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		zlog.Fatalw("mongodb connect failed", "err", err)
	}
	defer db.Client.Disconnect(context.Background())
	zlog.Infow("mongodb connected", "database", cfg.Mongo.Database)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	store, err := storage.NewS3Store(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint)
	if err != nil {
		zlog.Fatalw("s3 init failed", "err", err)
	}

	chat, err := stream.NewClient(cfg.Stream.APIKey, cfg.Stream.APISecret)
	if err != nil {
		zlog.Fatalw("stream client init failed", "err", err)
	}
	if !chat.IsConfigured() {
		zlog.Warn("stream credentials missing, chat features degraded")
	}

	mail := mailer.NewClient(cfg.Mail.BrevoAPIKey, cfg.Mail.FromEmail, cfg.Mail.FromName)
	if !mail.IsConfigured() {
		zlog.Warn("brevo credentials missing, emails will not be sent")
	}

	tokens := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWTExpiry)
	google := oauth.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL)

	users := repository.NewUserRepository(db)
	friendReqs := repository.NewFriendRequestRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	authSvc := services.NewAuthService(users, mail, chat, tokens, cfg.OTPTTL, zlog)
	friendSvc := services.NewFriendService(users, friendReqs, zlog)
	storySvc := services.NewStoryService(storyRepo, users, zlog)
	groupSvc := services.NewGroupService(groupRepo, users, chat, zlog)
	uploadSvc := services.NewUploadService(store, cfg.Upload.MaxSizeMB)

	app := fiber.New(fiber.Config{
		BodyLimit:    (cfg.Upload.MaxSizeMB + 1) * 1024 * 1024,
		ErrorHandler: fiberErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.FrontendURL,
		AllowCredentials: true,
	}))

	routes.Register(app, routes.Deps{
		Auth:        handlers.NewAuthHandler(authSvc, google, cfg.JWTExpiry, cfg.App.CrossOrigin, cfg.App.FrontendURL),
		Users:       handlers.NewUserHandler(authSvc, friendSvc, uploadSvc),
		Stories:     handlers.NewStoryHandler(storySvc, uploadSvc),
		Groups:      handlers.NewGroupHandler(groupSvc),
		Chat:        handlers.NewChatHandler(chat),
		Health:      handlers.NewHealthHandler(db.Client),
		Tokens:      tokens,
		SignupLimit: middleware.NewRateLimiter(rdb, "rl:signup", 10, time.Hour),
		ResendLimit: middleware.NewRateLimiter(rdb, "rl:otp", cfg.OTP.SendsPerHour, time.Hour),
	})

	sweep := sweeper.New(storySvc, zlog)
	if err := sweep.Start(cfg.Story.SweepEveryMinutes); err != nil {
		zlog.Fatalw("sweeper start failed", "err", err)
	}
	defer sweep.Stop()

	if cfg.App.MetricsPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.App.MetricsPort)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			zlog.Infow("metrics listener up", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				zlog.Errorw("metrics listener failed", "err", err)
			}
		}()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		zlog.Infow("server listening", "addr", addr, "env", cfg.App.Env)
		if err := app.Listen(addr); err != nil {
			zlog.Errorw("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		zlog.Errorw("shutdown error", "err", err)
	}
}

func fiberErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "message": err.Error()})
}
