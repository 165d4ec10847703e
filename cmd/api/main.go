package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"qrserve/internal/adapter/repo"
	"qrserve/internal/captcha"
	"qrserve/internal/http/handlers"
	httpapi "qrserve/internal/http/httpapi"
	"qrserve/internal/infra"
	"qrserve/internal/infra/geoip"
	"qrserve/internal/middleware"
	"qrserve/internal/proofstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	if err := infra.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	if geo != nil {
		defer geo.Close()
	} else {
		logger.Warn().Msg("geoip disabled, scans will carry no country")
	}

	proofs, err := proofstore.New(ctx, proofstore.Options{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init proof storage")
	}

	app := &handlers.App{
		Users:      repo.NewUserRepository(dbpool),
		Codes:      repo.NewQRRepository(dbpool),
		Ledger:     repo.NewLedger(dbpool),
		Scans:      repo.NewScanRepository(dbpool),
		Proofs:     repo.NewProofRepository(dbpool),
		ProofStore: proofs,
		Captcha:    captcha.NewVerifier(cfg.CaptchaVerifyURL, cfg.CaptchaSecret),
		Attempts:   middleware.NewAttemptLimiter(rdb),
		Geo:        geo,
		Logger:     logger,
		Cfg:        cfg,
	}

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
