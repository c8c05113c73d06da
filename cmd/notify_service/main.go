package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social_network_service/internal/notify/app"
	"social_network_service/pkg/config"
	"social_network_service/pkg/database"
	"social_network_service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.NotifyService, config.EnvConfig.NotifyServiceLogPath)

	cfg := config.LoadConfig[config.Notify](config.EnvConfig.NotifyService, config.EnvConfig.NotifyServiceYAMLPath)

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

	dispatcher := app.NewDispatcher(rabbitCh, cfg.Push.Queue, app.NewGatewaySender(cfg.GatewayURL), cfg.MaxAttempts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Log.Info("shutdown signal received")
		cancel()
	}()

	if err := dispatcher.Run(ctx); err != nil {
		logger.Log.Fatal("push dispatcher stopped", zap.Error(err))
	}
}
