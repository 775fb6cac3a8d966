package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kargopanel/backend/internal/cache"
	"github.com/kargopanel/backend/internal/config"
	"github.com/kargopanel/backend/internal/repository/pgrepo"
	"github.com/kargopanel/backend/internal/repository/repoargs"
	"github.com/kargopanel/backend/internal/service"
	"github.com/kargopanel/backend/internal/transport/api"
	"github.com/kargopanel/backend/internal/transport/chat"
	"github.com/kargopanel/backend/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	var carrierCache service.CarrierCache
	if a.Config.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
		if pingErr := redisClient.Ping(notifyCtx).Err(); pingErr != nil {
			// кэш вспомогательный, без redis продолжаем работать на одной базе
			a.Logger.WithError(pingErr).Warn("redis unavailable, carrier cache disabled")
		} else {
			carrierCache = cache.NewCarrierCache(redisClient)
			defer redisClient.Close()
		}
	}

	services, sErr := service.Factory(service.FactoryArgs{
		UnitOfWork:   unitOfWork,
		JWTSecret:    []byte(a.Config.JWTSecret),
		CarrierCache: carrierCache,
		Logger:       a.Logger,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	chatHandler := chat.NewHandler(chat.NewSessionManager(), a.Logger)

	router, routerErr := api.New(api.RouterArgs{
		Logger:              a.Logger,
		UserService:         services.UserService,
		WalletService:       services.WalletService,
		DepositService:      services.DepositService,
		OrderService:        services.OrderService,
		CarrierService:      services.CarrierService,
		NotificationService: services.NotificationService,
		RecipientService:    services.RecipientService,
		ChatHandler:         chatHandler.Serve,
		JWTSecretKey:        []byte(a.Config.JWTSecret),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.TransactionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewTransactionRepository(dbtx)
		},
		repoargs.DepositRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewDepositRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.CarrierRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCarrierRepository(dbtx)
		},
		repoargs.SavedRecipientRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewSavedRecipientRepository(dbtx)
		},
		repoargs.NotificationRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewNotificationRepository(dbtx)
		},
	}

	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
