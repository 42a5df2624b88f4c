package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/urquest/api/handler"
	"github.com/fastygo/urquest/internal/config"
	"github.com/fastygo/urquest/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/urquest/internal/infrastructure/redis"
	"github.com/fastygo/urquest/internal/infrastructure/storage"
	"github.com/fastygo/urquest/internal/middleware"
	"github.com/fastygo/urquest/internal/router"
	"github.com/fastygo/urquest/internal/services"
	"github.com/fastygo/urquest/internal/services/lifecycle"
	"github.com/fastygo/urquest/pkg/httpcontext"
	"github.com/fastygo/urquest/pkg/logger"
	redisRepo "github.com/fastygo/urquest/repository/redis"
	"github.com/fastygo/urquest/usecase/access"
	authUC "github.com/fastygo/urquest/usecase/auth"
	orgUC "github.com/fastygo/urquest/usecase/org"
	profileUC "github.com/fastygo/urquest/usecase/profile"
	submissionUC "github.com/fastygo/urquest/usecase/submission"
	taskUC "github.com/fastygo/urquest/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := storage.Open(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	manager.RegisterCloser(store.Name, store.Close)

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient.Close)

	mon := monitor.New(cfg.Leaderboard.RefreshInterval, zapLogger)
	mon.Register(store.Name, store.Ping)
	mon.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	mon.Start()
	manager.RegisterStop("monitor", mon.Stop)

	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	leaderboardCache := redisRepo.NewLeaderboardCache(redisClient, cfg.Leaderboard.CacheTTL)
	evaluator := access.NewEvaluator(store.Users, store.Organizations, store.Roles)
	tokens := authUC.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	authUseCase := authUC.New(store.Users, store.Organizations, sessionRepo, tokens, cfg.Session.TTL, zapLogger)
	orgUseCase := orgUC.New(store.Users, store.Organizations, store.Roles, evaluator, zapLogger)
	taskUseCase := taskUC.New(store.Tasks, evaluator, zapLogger)
	submissionUseCase := submissionUC.New(store.Tasks, store.Users, store.Submissions, leaderboardCache, evaluator, zapLogger)
	profileUseCase := profileUC.New(store.Users, store.Submissions, leaderboardCache, zapLogger)

	refresher, err := services.NewLeaderboardRefresher(profileUseCase, mon, cfg.Leaderboard.RefreshInterval, zapLogger)
	if err != nil {
		zapLogger.Fatal("leaderboard refresher", zap.Error(err))
	}
	refresher.Start()
	manager.Register("leaderboard_refresher", refresher.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Organization: apiHandler.NewOrganizationHandler(orgUseCase, ctxAdapter, zapLogger),
		Role:         apiHandler.NewRoleHandler(orgUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Submission:   apiHandler.NewSubmissionHandler(submissionUseCase, ctxAdapter, zapLogger),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      middleware.StripIdentity(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", store.Name),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
