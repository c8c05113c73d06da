package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	callapp "social_network_service/internal/call/app"
	calldomain "social_network_service/internal/call/domain"
	"social_network_service/internal/chat/app"
	"social_network_service/internal/chat/repository"
	"social_network_service/internal/chat/router"
	memberapp "social_network_service/internal/member/app"
	memberdomain "social_network_service/internal/member/domain"
	memberrepo "social_network_service/internal/member/repository"
	"social_network_service/pkg/config"
	"social_network_service/pkg/database"
	"social_network_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	// 2. 建立 Mongo 連線 (chat / request / message bucket)
	ctx := context.Background()
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 3. 建立 Redis 連線 (Pub/Sub、decision cache、typing、call record)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 4. 建立 Kafka writer (chat 事件流)
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect kafka err : %v", err))
	}
	defer kafkaWriter.Close()

	// 5. 建立 MinIO 連線 (訊息附件)
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	// 6. 建立 RabbitMQ channel (push 通知)
	rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    cfg.Push.URL,
		RetryCount:    cfg.Push.RetryCount,
		RetryInterval: time.Duration(cfg.Push.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect rabbitmq err : %v", err))
	}
	defer rabbitConn.Close()

	rabbitCh, err := database.GetRabbitMQChannelWithRetry(rabbitConn, cfg.Push.RetryCount, time.Duration(cfg.Push.RetryInterval))
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("get rabbitmq channel err : %v", err))
	}

	// 7. member 資料庫 (follow graph、顯示名稱)
	sqlParams := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries", zap.Error(err))
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

	// 8. 初始化 Repository
	chatRepo := repository.NewMongoChatRepository(mongo.Database)
	requestRepo := repository.NewMongoRequestRepository(mongo.Database)
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	decisionRepo := repository.NewRedisDecisionRepository(redisClient)
	typingRepo := repository.NewRedisTypingRepository(redisClient)
	attachmentRepo := repository.NewMinIOAttachmentRepository(minioClient)
	pub := repository.NewRedisPubSub(redisClient)
	stream := repository.NewKafkaEventStream(kafkaWriter)

	memberRepo := memberrepo.NewMemberRepository(pool)
	followRepo := memberrepo.NewFollowRepository(gormDB)
	sessionRepo := database.NewRedisRepositoryWithClient[memberdomain.MemberSession](redisClient)
	memberUC := memberapp.NewMemberUseCase(memberRepo, followRepo, 30*time.Minute, sessionRepo)

	// 9. 初始化 UseCases
	chatListUC := app.NewChatListUseCase(chatRepo, requestRepo, decisionRepo, msgRepo, memberUC, pub, stream)
	messageUC := app.NewMessageUseCase(chatRepo, msgRepo, typingRepo, attachmentRepo, pub, stream)

	registry := callapp.NewProviderRegistry(
		callapp.NewAgoraProvider(cfg.Agora.AppID, cfg.Agora.Secret),
		callapp.NewStreamProvider(cfg.Stream.AppID, cfg.Stream.Secret),
		callapp.NewZegoProvider(cfg.Zego.AppID, cfg.Zego.Secret),
		callapp.NewHMSProvider(cfg.HMS.AppID, cfg.HMS.Secret),
	)
	callRecords := database.NewRedisRepositoryWithClient[calldomain.CallRecord](redisClient)
	callUC := callapp.NewCallUseCase(callRecords, registry, pub, database.NewRabbitRepository(rabbitCh))

	// 10. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	// 注册路由
	router.RegisterRoutes(r, app.NewChatWebsocketHandler(chatListUC, messageUC, callUC, memberUC, pub), chatListUC, messageUC)

	// Listen
	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
