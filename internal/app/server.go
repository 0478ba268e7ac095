// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"qarilive-service/internal/config"
	"qarilive-service/internal/db"
	accountHandler "qarilive-service/internal/handlers/account"
	agentHandler "qarilive-service/internal/handlers/agent"
	healthHandler "qarilive-service/internal/handlers/health"
	payoutHandler "qarilive-service/internal/handlers/payout"
	reportHandler "qarilive-service/internal/handlers/report"
	submissionHandler "qarilive-service/internal/handlers/submission"
	"qarilive-service/internal/middleware"
	"qarilive-service/internal/pkg/jwt"
	"qarilive-service/internal/repository/drive"
	"qarilive-service/internal/repository/gotrue"
	"qarilive-service/internal/repository/postgres"
	"qarilive-service/internal/repository/redisstore"
	accountUsecase "qarilive-service/internal/service/account"
	agentUsecase "qarilive-service/internal/service/agent"
	payoutUsecase "qarilive-service/internal/service/payout"
	reportUsecase "qarilive-service/internal/service/report"
	submissionUsecase "qarilive-service/internal/service/submission"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg     config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	mu      sync.Mutex
	httpSrv *http.Server
	redis   *redis.Client
}

func NewServer(logger *zap.Logger) *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine, logger: logger}
}

// Start wires every dependency and serves until Shutdown is called.
func (s *Server) Start() error {
	ctx := context.Background()
	logger := s.logger

	if err := s.cfg.Validate(); err != nil {
		return err
	}

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	// Referral cards live in redis; without it ma/card falls back to the
	// payout table.
	var cards payoutUsecase.CardStore
	redisClient, err := db.NewRedisClient(ctx, db.RedisConfig{
		Address:  s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		PoolSize: 10,
	})
	if err != nil {
		logger.Warn("redis unavailable, referral cards will be read from the database", zap.Error(err))
	} else {
		logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))
		s.mu.Lock()
		s.redis = redisClient
		s.mu.Unlock()
		cards = redisstore.NewCardStore(redisClient)
	}

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Identity provider -----
	token := gotrue.TokenSource(jwtManager.Generator.AdminToken)
	if s.cfg.IdentityAdminToken != "" {
		token = gotrue.StaticToken(s.cfg.IdentityAdminToken)
	}
	directory := gotrue.NewClient(gotrue.Config{
		BaseURL:  s.cfg.IdentityAdminURL,
		PageSize: s.cfg.IdentityPageSize,
		Timeout:  s.cfg.UpstreamTimeout,
	}, token, &http.Client{}, logger)

	// ----- File host -----
	files, err := drive.New(ctx, drive.Config{
		FolderID:           s.cfg.Drive.FolderID,
		ServiceAccountJSON: s.cfg.Drive.ServiceAccountJSON,
		ClientID:           s.cfg.Drive.ClientID,
		ClientSecret:       s.cfg.Drive.ClientSecret,
		RefreshToken:       s.cfg.Drive.RefreshToken,
		Timeout:            s.cfg.UpstreamTimeout,
	}, logger)
	if err != nil {
		logger.Warn("file host unavailable, submissions will be rejected", zap.Error(err))
		files = drive.NewWithService(nil, "", 0, logger)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	payoutRepo := postgres.NewPayoutRepository(pool)
	registryRepo := postgres.NewAgentRegistryRepository(pool)
	submissionRepo := postgres.NewSubmissionRepository(pool)

	// ----- Services (Usecases) -----
	accountService := accountUsecase.NewAccountService(directory, registryRepo, logger)
	agentService := agentUsecase.NewAgentService(registryRepo, logger)
	payoutService := payoutUsecase.NewPayoutService(payoutRepo, cards, logger)
	submissionService := submissionUsecase.NewSubmissionService(submissionRepo, files, submissionUsecase.Config{
		MaxProofBytes: s.cfg.ProofMaxBytes,
		FilePrefix:    s.cfg.ProofFilePrefix,
	}, logger)
	reportService := reportUsecase.NewReportService(directory, registryRepo, submissionRepo, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(jwtManager.Verifier)

	s.engine.Use(
		middleware.LoggingMiddleware(logger),
		middleware.RecoveryMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	)

	// ----- Router -----
	handlers := &Handlers{
		HealthHandler:     healthHandler.NewHealthHandler(dbWrapper, logger),
		AccountHandler:    accountHandler.NewAccountHandler(accountService),
		AgentHandler:      agentHandler.NewAgentHandler(agentService, accountService),
		PayoutHandler:     payoutHandler.NewPayoutHandler(payoutService),
		SubmissionHandler: submissionHandler.NewSubmissionHandler(submissionService),
		ReportHandler:     reportHandler.NewReportHandler(reportService),
		AuthMiddleware:    authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	httpSrv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = httpSrv
	s.mu.Unlock()

	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the pools.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpSrv, redisClient := s.httpSrv, s.redis
	s.mu.Unlock()

	var err error
	if httpSrv != nil {
		err = httpSrv.Shutdown(ctx)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	db.CloseDB()
	return err
}
