package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	api "github.com/mind-engage/mindengage-dumps/internal/api/http"
	auth "github.com/mind-engage/mindengage-dumps/internal/auth/middleware"
	"github.com/mind-engage/mindengage-dumps/internal/config"
	"github.com/mind-engage/mindengage-dumps/internal/db"
	"github.com/mind-engage/mindengage-dumps/internal/exam"
	"github.com/mind-engage/mindengage-dumps/internal/results"
	"github.com/mind-engage/mindengage-dumps/internal/storage"
	syncx "github.com/mind-engage/mindengage-dumps/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	var bank exam.Bank = exam.NewSQLBank(dbh)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(openCtx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable; question-set cache will fall through")
		}
		defer rdb.Close()
		bank = exam.NewCachedBank(bank, rdb, cfg.BankCacheTTL)
	}

	var store results.Store
	switch cfg.ResultsDriver {
	case "mongo":
		client, err := mongo.Connect(openCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		ms := results.NewMongoStore(client, cfg.MongoDB)
		if err := ms.EnsureIndexes(openCtx); err != nil {
			log.Fatalf("mongo indexes: %v", err)
		}
		store = ms
	case "memory":
		store = results.NewInMemoryStore()
	default:
		store = results.NewSQLStore(dbh)
	}

	images, err := storage.NewFSStore(cfg.AssetsDir)
	if err != nil {
		log.Fatalf("image store: %v", err)
	}

	svc := results.NewService(bank, store,
		results.WithEvents(syncx.NewEventRepo(dbh)),
		results.WithDefaultPassingScore(cfg.DefaultPassingScore),
	)
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, cfg.AdminUser, cfg.AdminPassHash))
	(&api.Server{
		Bank:      bank,
		Results:   svc,
		Auth:      authSvc,
		Images:    images,
		PublicURL: cfg.PublicURL,
	}).Mount(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	log.WithFields(log.Fields{
		"addr":    cfg.HTTPAddr,
		"db":      cfg.DBDriver,
		"results": cfg.ResultsDriver,
		"cache":   cfg.RedisAddr != "",
	}).Info("examd listening")
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
