package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/teamup-api/internal/config"
	"github.com/BuzzLyutic/teamup-api/internal/handler"
	"github.com/BuzzLyutic/teamup-api/internal/repo"
	"github.com/BuzzLyutic/teamup-api/internal/router"
	"github.com/BuzzLyutic/teamup-api/internal/service"
	"github.com/BuzzLyutic/teamup-api/internal/worker"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем БД
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.") // Fatal потому что дальнейшая работа теряет смысл
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("Failed to ping the Database.")
	}
	logger.Info("Successfully connected to the Database!")

	// Репозитории и сервисы
	taskRepo := repo.NewTaskRepo(pool)
	roleRepo := repo.NewRoleRepo(pool)
	subTaskRepo := repo.NewSubTaskRepo(pool)

	taskService := service.NewTaskService(taskRepo)
	membershipService := service.NewMembershipService(roleRepo)
	subTaskService := service.NewSubTaskService(subTaskRepo, taskRepo)

	validate := validator.New()

	taskHandler := handler.NewTaskHandler(taskService, logger, validate)
	membershipHandler := handler.NewMembershipHandler(membershipService, logger)
	subTaskHandler := handler.NewSubTaskHandler(subTaskService, logger, validate)

	r := router.Setup(taskHandler, membershipHandler, subTaskHandler)

	// Свипер просроченных подзадач
	sweeper := worker.NewPool(pool, logger, cfg.WorkerCount, cfg.SweepInterval)
	sweeper.Start(context.Background())

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: r,
		ReadTimeout: 10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func ()  { // Запуск сервера и обработка ошибок
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10 * time.Second)
	defer cancel()

	sweeper.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped succsessfully!")
}
