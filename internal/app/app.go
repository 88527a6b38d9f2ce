package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"LiqLearns/internal/app/server"
	"LiqLearns/internal/config"
	"LiqLearns/internal/delivery/http"
	"LiqLearns/internal/delivery/http/controllers"
	"LiqLearns/internal/pptx"
	"LiqLearns/internal/service"
	"LiqLearns/internal/service/auth"
	"LiqLearns/internal/service/presentation/authoring"
	"LiqLearns/internal/service/presentation/playback"
	"LiqLearns/internal/service/presentation/query"
	"LiqLearns/internal/service/presentation/upload"
	"LiqLearns/internal/storage/elastic"
	"LiqLearns/internal/storage/minio_storage"
	"LiqLearns/internal/storage/postgres"
	"LiqLearns/internal/storage/redis_storage"
	"LiqLearns/pkg/logger"
)

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()
	if err := pg.EnsureSchema(context.Background()); err != nil {
		log.FatalErr("error creating schema", err)
	}

	checks := map[string]controllers.HealthCheck{"postgres": pg.Ping}

	presentationRepo := postgres.NewPresentationPostgres(pg.Pool)

	var progressStore playback.ProgressStore
	switch cfg.Playback.ProgressBackend {
	case config.ProgressBackendRedis:
		rdb, err := redis_storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.FatalErr("error connecting to redis", err)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		progressStore = redis_storage.NewProgressRedis(rdb, cfg.Redis.Prefix, cfg.Redis.TTL)
	case config.ProgressBackendPostgres, "":
		progressStore = postgres.NewProgressPostgres(pg.Pool)
	default:
		log.Fatal("unknown progress backend", "backend", cfg.Playback.ProgressBackend)
	}
	log.Info("progress backend selected", "backend", cfg.Playback.ProgressBackend)

	minioStore, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Buckets)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	bucket, err := minioStore.Bucket(minio_storage.SlideMediaBucket)
	if err != nil {
		log.FatalErr("slide media bucket", err)
	}
	mediaStore, err := minio_storage.NewSlideMediaStorage(minioStore, bucket.Name, bucket.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing slide media bucket", err)
	}

	es, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewPresentationSearchRepository(es, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(context.Background()); err != nil {
		log.FatalErr("error creating search index", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer)
	parser := pptx.NewParser(log, cfg.Upload.ParseWorkers)
	playbackService := playback.NewPlaybackService(log, presentationRepo, progressStore, playback.Config{
		AutoplayInterval: cfg.Playback.AutoplayInterval,
		FlushTimeout:     cfg.Playback.FlushTimeout,
		WriteTimeout:     cfg.Playback.WriteTimeout,
	})

	u := service.Collection{
		AuthService:      auth.NewAuthService(log, jwtManager),
		UploadService:    upload.NewPresentationUploadService(log, parser, presentationRepo, mediaStore, searchRepo, cfg.Upload.MaxBytes),
		QueryService:     query.NewPresentationQueryService(log, presentationRepo, searchRepo, mediaStore, progressStore),
		AuthoringService: authoring.NewAuthoringService(log, presentationRepo),
		PlaybackService:  playbackService,
	}

	r := http.InitRoutes(log, u, cfg.HTTPServer.CORSOrigins, checks)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("http server stopped", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("http server shutdown", err)
	}
	if err := playbackService.Shutdown(); err != nil {
		log.ErrorErr("failed to flush playback sessions", err)
	}
}
