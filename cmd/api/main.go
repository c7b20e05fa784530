package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/prasanth45bit/travella-server-v2/internal/adapters/auth"
	"github.com/prasanth45bit/travella-server-v2/internal/adapters/catalog"
	server "github.com/prasanth45bit/travella-server-v2/internal/adapters/http_server"
	"github.com/prasanth45bit/travella-server-v2/internal/adapters/keepalive"
	"github.com/prasanth45bit/travella-server-v2/internal/adapters/observability"
	redisad "github.com/prasanth45bit/travella-server-v2/internal/adapters/redis"
	"github.com/prasanth45bit/travella-server-v2/internal/app"
	"github.com/prasanth45bit/travella-server-v2/internal/shared"
	mysqlrepo "github.com/prasanth45bit/travella-server-v2/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	catalogClient, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}
	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token verifier")
	}

	bookings := app.NewBookingService(repo, catalogClient)
	queries := app.NewQueryService(repo, catalogClient, cache, cfg.CacheTTL)

	// optional self-ping to keep free-tier hosting warm
	if cfg.PingURL != "" {
		go keepalive.New(cfg.PingURL, cfg.PingEvery).Start(context.Background())
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{B: bookings, Q: queries}, verifier)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
