package service_provider

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"NamelessFormsBot/internal/adapters/config"
	tgcontroller "NamelessFormsBot/internal/adapters/controller/telegram"
	"NamelessFormsBot/internal/adapters/formsapi"
	"NamelessFormsBot/internal/adapters/repository/postgres"
	"NamelessFormsBot/internal/adapters/repository/redisstate"
	"NamelessFormsBot/internal/domain/service/access"
	formsvc "NamelessFormsBot/internal/domain/service/forms"
	"NamelessFormsBot/internal/domain/service/session"
)

type ServiceProvider struct {
	config config.Config
	logger *zap.Logger

	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	accessService *access.Service
	formsService  *formsvc.Service
	engine        *session.Engine

	botRunner *tgcontroller.Runner
}

func New() (*ServiceProvider, error) {
	sp := &ServiceProvider{}
	if err := sp.init(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *ServiceProvider) BotRunner() *tgcontroller.Runner {
	return sp.botRunner
}

func (sp *ServiceProvider) Engine() *session.Engine {
	return sp.engine
}

func (sp *ServiceProvider) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sp.config = cfg

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	sp.logger = logger

	ctx := context.Background()

	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := pgPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	sp.pgPool = pgPool

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	sp.redisClient = redisClient

	submissionRepo := postgres.NewSubmissionRepo(sp.pgPool)
	if err := submissionRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	settingsRepo := redisstate.NewSettingsRepo(sp.redisClient)
	apiClient := formsapi.NewClient(settingsRepo)

	sp.accessService = access.New(cfg.AdminIDs)
	sp.formsService = formsvc.New(apiClient, settingsRepo)

	ctrl, err := tgcontroller.New(cfg.BotToken, sp.accessService, sp.formsService, submissionRepo, logger)
	if err != nil {
		return fmt.Errorf("create telegram controller: %w", err)
	}

	sp.engine = session.NewEngine(session.NewStore(), apiClient, submissionRepo, ctrl.Transport(), ctrl.Files(), logger)
	ctrl.AttachEngine(sp.engine)
	sp.botRunner = ctrl.Runner()

	logger.Info("service provider initialized")
	return nil
}
