package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/service"

	taskinmemory "taskManager/internal/repository/task/inmemory"
	taskpostgres "taskManager/internal/repository/task/postgres"
	userinmemory "taskManager/internal/repository/user/inmemory"
	userpostgres "taskManager/internal/repository/user/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const RateLimitRPM = 100

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	taskRepo, userRepo, err := a.initRepositories(ctx)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey: a.config.Auth.SecretKey,
		TokenTTL:  a.config.Auth.TokenTTL,
		Issuer:    a.config.Auth.Issuer,
	})
	authService := auth.NewService(userRepo, jwtManager)
	taskService := service.NewTaskService(taskRepo)

	taskHandler := handlers.NewTaskHandler(&taskService)
	authHandler := handlers.NewAuthHandler(authService)

	a.router = a.buildRouter(&taskHandler, &authHandler, authService)
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func (a *App) initRepositories(ctx context.Context) (service.TaskRepository, auth.UserRepository, error) {
	switch a.config.Repository.Type {
	case "postgres":
		if a.config.Database.MigrationsPath != "" {
			if err := a.applyMigrations(); err != nil {
				return nil, nil, err
			}
		}

		store, err := taskpostgres.New(ctx, a.config.Database.URL, taskpostgres.PoolConfig{
			MaxConns:    a.config.Database.MaxConnections,
			MinConns:    a.config.Database.MinConnections,
			IdleTimeout: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.shutdowns = append(a.shutdowns, store.Close)

		return store, userpostgres.New(store.Pool()), nil

	default:
		return taskinmemory.NewTaskStorage(), userinmemory.NewUserStorage(), nil
	}
}

func (a *App) applyMigrations() error {
	m, err := migrate.New("file://"+a.config.Database.MigrationsPath, a.config.Database.URL)
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Миграции применены")
	return nil
}

func (a *App) buildRouter(taskHandler *handlers.TaskHandler, authHandler *handlers.AuthHandler, authenticator middleware.Authenticator) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimit(RateLimitRPM))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /api/register
		r.Post("/login", authHandler.Login)       // POST /api/login

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authenticator))

			r.Get("/user", authHandler.CurrentUser) // GET /api/user

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks) // GET /api/tasks
				r.Post("/", taskHandler.PostTask) // POST /api/tasks

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTaskByID)       // GET /api/tasks/{id}
					r.Put("/", taskHandler.UpdateTaskByID)    // PUT /api/tasks/{id}
					r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /api/tasks/{id}
				})
			})
		})
	})

	r.Get("/health", taskHandler.HealthCheck)

	return r
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("Server started: " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("запуск сервера: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}

	return nil
}
