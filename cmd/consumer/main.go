package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"telegram-task-relay/config"
	relayKafka "telegram-task-relay/internal/relay/delivery/kafka"
	pendingRedis "telegram-task-relay/internal/relay/repository/redis"
	"telegram-task-relay/internal/relay/usecase"
	"telegram-task-relay/internal/settings"
	"telegram-task-relay/pkg/kafka"
	"telegram-task-relay/pkg/log"
	pkgRedis "telegram-task-relay/pkg/redis"
	"telegram-task-relay/pkg/speech"
	"telegram-task-relay/pkg/telegram"
)

// main runs the result consumer: task results published to kafka.result_topic are delivered to
// the chat exactly like POST /callback. It shares the Redis pending store with cmd/api, so
// requests dispatched by the API process resolve here.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting result consumer...")

	if cfg.Redis.Addr == "" {
		logger.Error(ctx, "redis.addr is required: the consumer must share the pending store with the API")
		return
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.ResultTopic == "" {
		logger.Error(ctx, "kafka.brokers and kafka.result_topic are required")
		return
	}

	rdb, err := pkgRedis.Connect(ctx, pkgRedis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		logger.Error(ctx, "Failed to connect to Redis: ", err)
		return
	}
	defer rdb.Close()

	pending := pendingRedis.New(rdb, cfg.Redis.KeyPrefix, logger)
	flagDefaults := settings.NewViperReader(viper.GetViper())
	if config.Watch(func(string) { flagDefaults.Reload() }) {
		logger.Info(ctx, "Watching config file for live settings")
	}
	flags := settings.NewRedisStore(rdb, "", flagDefaults, logger)

	var sp speech.ISpeech
	if cfg.Speech.APIKey != "" {
		if sc, sErr := speech.New(cfg.Speech.APIKey); sErr != nil {
			logger.Warnf(ctx, "Speech disabled: %v", sErr)
		} else {
			if cfg.Speech.BaseURL != "" {
				sc = sc.WithBaseURL(cfg.Speech.BaseURL)
			}
			sp = sc.WithModels(cfg.Speech.TTSModel, cfg.Speech.STTModel).WithVoice(cfg.Speech.Voice)
		}
	}

	// No dispatcher: this process only delivers results.
	relayUC := usecase.New(logger, pending, nil, telegram.NewBot(cfg.Telegram.BotToken), sp, flags, usecase.Config{
		PendingTTL:    cfg.Redis.PendingTTL,
		MaxIterations: cfg.TaskAPI.MaxIterations,
	})

	saramaConsumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
	if err != nil {
		logger.Error(ctx, "Failed to create Kafka consumer: ", err)
		return
	}
	defer saramaConsumer.Close()

	consumer, err := relayKafka.New(logger, relayUC, saramaConsumer, cfg.Kafka.ResultTopic)
	if err != nil {
		logger.Error(ctx, "Failed to create result consumer: ", err)
		return
	}

	if err := consumer.Run(ctx); err != nil {
		logger.Error(ctx, "Result consumer failed: ", err)
		return
	}
	logger.Info(ctx, "Result consumer stopped gracefully")
}
