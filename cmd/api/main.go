package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/config"
	"github.com/xavierca1/expo-leads/internal/infra/crypto"
	"github.com/xavierca1/expo-leads/internal/infra/database"
	"github.com/xavierca1/expo-leads/internal/infra/http/handlers"
	"github.com/xavierca1/expo-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/expo-leads/internal/infra/logger"
	"github.com/xavierca1/expo-leads/internal/infra/mail"
	"github.com/xavierca1/expo-leads/internal/infra/queue"
	"github.com/xavierca1/expo-leads/internal/infra/ratelimit"
	"github.com/xavierca1/expo-leads/internal/infra/storage"
	"github.com/xavierca1/expo-leads/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on config, so this is the one plain write.
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", zap.String("url", cfg.MaskedDatabaseURL()))
	db, err := database.NewDBConnection(cfg.Database.URL, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(db, log); err != nil {
			return err
		}
	}

	var cipher *crypto.FieldCipher
	if cfg.EncryptionKey != "" {
		if cipher, err = crypto.NewFieldCipher([]byte(cfg.EncryptionKey)); err != nil {
			return err
		}
		log.Info("field encryption enabled")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// 1. Repositories
	txManager := database.NewTxManager(db)
	leadRepo := database.NewLeadRepository(db, cipher)
	interestRepo := database.NewInterestRepository(db)
	exhibitionRepo := database.NewExhibitionRepository(db)
	productRepo := database.NewProductRepository(db)
	dashboardRepo := database.NewDashboardRepository(db, cipher, loc.String())

	// 2. Collateral and mail
	collateral, err := newCollateralReader(ctx, cfg, log)
	if err != nil {
		return err
	}
	assets := storage.NewLocalReader(cfg.Collateral.AssetsDir)

	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})

	dispatcher := usecase.NewNotificationDispatcher(mailer, collateral, assets, usecase.NotificationSettings{
		Cc:                    cfg.Mail.Cc,
		ReplyTo:               cfg.Mail.ReplyTo,
		BrandAssetRef:         cfg.Mail.BrandAsset,
		StandardCollateralRef: cfg.Mail.StandardAsset,
		SendTimeout:           cfg.Mail.SendTimeout,
		Signature: mail.Signature{
			Name:    cfg.Mail.SignatureName,
			Title:   cfg.Mail.SignatureTitle,
			Company: cfg.Mail.SignatureCompany,
			Address: cfg.Mail.SignatureAddress,
			Phone:   cfg.Mail.SignaturePhone,
			Email:   cfg.Mail.SignatureEmail,
			Website: cfg.Mail.SignatureWebsite,
		},
	}, log.Named("notify"))

	// 3. Queue (optional)
	var publisher usecase.EventPublisher
	var broker handlers.BrokerConn
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		publisher = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ.Conn

		if cfg.RabbitMQ.RedeliveryEnabled {
			redeliver := usecase.NewRedeliverNotificationUseCase(leadRepo, interestRepo, exhibitionRepo, dispatcher, log)
			// A separate channel keeps consumer flow control off the publisher.
			consumeCh, err := rabbitMQ.Conn.Channel()
			if err != nil {
				return err
			}
			worker := queue.NewWorker(consumeCh, redeliver, log.Named("worker"))
			go func() {
				if err := worker.Start(ctx, queue.NotificationQueue); err != nil {
					log.Error("notification worker exited", zap.Error(err))
				}
			}()
		}

		if cfg.CRM.Enabled {
			crm := kommo.NewClient(kommo.Config{
				BaseURL:  cfg.CRM.BaseURL,
				Token:    cfg.CRM.Token,
				StatusID: cfg.CRM.StatusID,
				Timeout:  cfg.CRM.Timeout,
			}, log.Named("kommo"))
			syncUC := usecase.NewSyncLeadToCRMUseCase(leadRepo, interestRepo, crm, log)

			syncCh, err := rabbitMQ.Conn.Channel()
			if err != nil {
				return err
			}
			syncWorker := queue.NewSyncWorker(syncCh, syncUC, log.Named("crm"))
			go func() {
				if err := syncWorker.Start(ctx); err != nil {
					log.Error("crm sync worker exited", zap.Error(err))
				}
			}()
		}
	}

	// 4. Use cases
	submitUC := usecase.NewSubmitLeadUseCase(txManager, leadRepo, interestRepo, exhibitionRepo, productRepo, log)
	registerUC := usecase.NewRegisterVisitorUseCase(submitUC, dispatcher, publisher, cfg.RabbitMQ.RedeliveryEnabled, log)
	listUC := usecase.NewListLeadsUseCase(leadRepo, log)
	dashboardUC := usecase.NewGetDashboardUseCase(dashboardRepo, loc, log)

	// 5. Rate limiting
	limiter, redisPing, closeLimiter := newLimiter(ctx, cfg, log)
	defer closeLimiter()

	// 6. Handlers and router
	router := newRouter(routes{
		visitors:  handlers.NewVisitorHandler(registerUC, listUC, limiter, log),
		dashboard: handlers.NewDashboardHandler(dashboardUC, log),
		health:    handlers.NewHealthHandler(db, broker, redisPing, version),
	}, cfg.App.CORSOrigins, log)

	return serve(ctx, ":"+cfg.App.Port, router, log)
}

func newCollateralReader(ctx context.Context, cfg *config.Config, log *zap.Logger) (usecase.FileReader, error) {
	if cfg.Collateral.Backend != "s3" {
		return storage.NewLocalReader(cfg.Collateral.BaseDir), nil
	}

	return storage.NewS3Reader(ctx, storage.S3Config{
		Bucket:       cfg.Collateral.S3Bucket,
		Region:       cfg.Collateral.S3Region,
		Endpoint:     cfg.Collateral.S3Endpoint,
		AccessKey:    cfg.Collateral.S3Key,
		SecretKey:    cfg.Collateral.S3Secret,
		Prefix:       cfg.Collateral.S3Prefix,
		UsePathStyle: cfg.Collateral.PathStyle,
	}, storage.WithLogger(log))
}

// newLimiter uses Redis when configured so limits hold across instances.
func newLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (ratelimit.Limiter, func(context.Context) error, func()) {
	rl := cfg.RateLimit
	if rl.RedisAddr == "" {
		mem := ratelimit.NewMemoryLimiter(rl.Requests, rl.Window)
		return mem, nil, mem.Close
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rl.RedisAddr,
		Password: rl.RedisPassword,
		DB:       rl.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, limiter will fail open until it recovers", zap.Error(err))
	}

	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return ratelimit.NewRedisLimiter(client, rl.Requests, rl.Window), ping, func() { client.Close() }
}

func serve(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
