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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/auth"
	"travel-review-service/internal/config"
	"travel-review-service/internal/handler"
	"travel-review-service/internal/itinerary"
	"travel-review-service/internal/logging"
	"travel-review-service/internal/mailer"
	"travel-review-service/internal/metrics"
	"travel-review-service/internal/middleware"
	mongoclient "travel-review-service/internal/mongo"
	"travel-review-service/internal/postgres"
	"travel-review-service/internal/repository"
	"travel-review-service/internal/service"
)

const (
	shutdownTimeout        = 10 * time.Second
	rateLimiterCleanupTick = 5 * time.Minute
)

// stores is the set of repositories picked by STORE_DRIVER.
type stores struct {
	reviews repository.ReviewRepository
	users   repository.UserRepository
	photos  repository.PhotoRepository
	close   func()
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}
	defer st.close()

	m := metrics.New("travel_review")
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiter.StartCleanup(ctx, rateLimiterCleanupTick)

	gemini := itinerary.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.UpstreamTimeout, log)
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, /generate_itinerary will fail")
	}
	smtp := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	router := handler.NewRouter(handler.Deps{
		ServiceName:        cfg.ServiceTag,
		Log:                log,
		Metrics:            m,
		Identity:           tokens,
		RateLimiter:        limiter,
		AllowedOrigins:     cfg.AllowedOrigins(),
		TrustedProxies:     cfg.Proxies(),
		MaxMultipartMemory: cfg.MaxUploadBytes(),
		MaxUploadBytes:     cfg.MaxUploadBytes(),

		Reviews:   service.NewReviewService(st.reviews, m),
		Accounts:  service.NewAuthService(st.users, tokens),
		Photos:    service.NewPhotoService(st.photos, m),
		Itinerary: itinerary.NewService(gemini, m),
		Contact:   mailer.NewContactService(smtp, cfg.MailFrom, cfg.MailTo, log, m),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"store":  cfg.StoreDriver,
			"photos": cfg.PhotoBackend,
		}).Info("travel review service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*stores, error) {
	var (
		st  *stores
		err error
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		st, err = openMongoStores(ctx, cfg, log)
	case config.DriverPostgres:
		st, err = openPostgresStores(ctx, cfg, log)
	default:
		mem := repository.NewMemoryStore()
		st = &stores{reviews: mem, users: mem.Users(), close: func() {}}
	}
	if err != nil {
		return nil, err
	}

	if st.photos == nil {
		disk, err := repository.NewDiskPhotoRepository(cfg.UploadDir)
		if err != nil {
			st.close()
			return nil, err
		}
		st.photos = disk
	}
	return st, nil
}

func openMongoStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*stores, error) {
	client, err := mongoclient.NewMongoClient(ctx, cfg.MongoURI, log)
	if err != nil {
		return nil, err
	}
	closeFn := func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.WithError(err).Warn("mongo disconnect")
		}
	}

	db := client.Database(cfg.MongoDatabase)
	users := repository.NewMongoUserRepository(db.Collection(mongoclient.UsersCollection))
	if err := users.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, err
	}

	st := &stores{
		reviews: repository.NewMongoReviewRepository(db.Collection(mongoclient.ReviewsCollection)),
		users:   users,
		close:   closeFn,
	}
	if cfg.PhotoBackend == config.PhotoBackendGridFS {
		photos, err := repository.NewGridFSPhotoRepository(db)
		if err != nil {
			closeFn()
			return nil, err
		}
		st.photos = photos
	}
	return st, nil
}

func openPostgresStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*stores, error) {
	if err := postgres.Migrate(cfg.DatabaseURL, log); err != nil {
		return nil, err
	}
	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("connected to PostgreSQL")

	return &stores{
		reviews: repository.NewPGReviewRepository(db),
		users:   repository.NewPGUserRepository(db),
		close: func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("postgres close")
			}
		},
	}, nil
}
