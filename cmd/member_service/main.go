package main

import (
	"fmt"
	"log"
	"os"
	"time"

	_ "social_network_service/docs" // 引入生成的 Swagger 文档
	"social_network_service/internal/api/handlers"
	"social_network_service/internal/api/router"
	"social_network_service/internal/member/app"
	"social_network_service/internal/member/domain"
	"social_network_service/internal/member/repository"
	"social_network_service/pkg/config"
	"social_network_service/pkg/database"
	"social_network_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MemberService, config.EnvConfig.MemberServiceLogPath)

	cfg := config.LoadConfig[config.Member](config.EnvConfig.MemberService, config.EnvConfig.MemberServiceYAMLPath)

	sqlParams := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", sqlParams)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	gormDB, err := database.NewGormConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect gorm after retries", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(&domain.Follow{}); err != nil {
		logger.Log.Fatal("follow table migrate failed", zap.Error(err))
	}

	memberRepo := repository.NewMemberRepository(pool)
	followRepo := repository.NewFollowRepository(gormDB)

	masterName, sentinel := config.GetRedisSetting()
	redisRepo, err := database.NewRedisRepository[domain.MemberSession](masterName, sentinel, cfg.RedisMember.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	usecase := app.NewMemberUseCase(memberRepo, followRepo, cfg.SessionTTL*time.Minute, redisRepo)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MemberServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, handlers.NewMemberHandler(usecase))

	port := ":" + cfg.Port
	log.Printf("Member Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
