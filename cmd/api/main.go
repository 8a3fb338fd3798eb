package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"telegram-task-relay/config"
	_ "telegram-task-relay/docs" // Swagger docs
	"telegram-task-relay/internal/httpserver"
	callbackHTTP "telegram-task-relay/internal/relay/delivery/http"
	tgDelivery "telegram-task-relay/internal/relay/delivery/telegram"
	"telegram-task-relay/internal/relay/repository"
	pendingMemory "telegram-task-relay/internal/relay/repository/memory"
	pendingRedis "telegram-task-relay/internal/relay/repository/redis"
	"telegram-task-relay/internal/relay/usecase"
	"telegram-task-relay/internal/settings"
	"telegram-task-relay/internal/webhook"
	"telegram-task-relay/pkg/kafka"
	"telegram-task-relay/pkg/log"
	pkgRedis "telegram-task-relay/pkg/redis"
	"telegram-task-relay/pkg/speech"
	"telegram-task-relay/pkg/taskapi"
	"telegram-task-relay/pkg/telegram"
)

// @title       Telegram Task Relay API
// @description Relays Telegram chats to a task-execution service and delivers its callbacks back to the chat.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Telegram Task Relay...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Pending store and admin flags
	flagDefaults := settings.NewViperReader(viper.GetViper())
	if config.Watch(func(path string) {
		flagDefaults.Reload()
		logger.Infof(context.Background(), "Config reloaded from %s", path)
	}) {
		logger.Info(ctx, "Watching config file for live settings")
	}

	var (
		rdb     goredis.UniversalClient
		pending repository.PendingRepository
		flags   settings.Store
	)
	if cfg.Redis.Addr != "" {
		rdb, err = pkgRedis.Connect(ctx, pkgRedis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			logger.Error(ctx, "Failed to connect to Redis: ", err)
			return
		}
		defer rdb.Close()
		pending = pendingRedis.New(rdb, cfg.Redis.KeyPrefix, logger)
		flags = settings.NewRedisStore(rdb, "", flagDefaults, logger)
		logger.Infof(ctx, "✅ Pending store: redis at %s", cfg.Redis.Addr)
	} else {
		pending = pendingMemory.New(0, cfg.Redis.PendingTTL)
		flags = settings.NewMemoryStore(flagDefaults)
		logger.Warn(ctx, "Pending store: in-memory (redis.addr not set); pending requests are lost on restart")
	}

	// 4. Task dispatch
	var dispatcher taskapi.Dispatcher
	switch cfg.TaskAPI.Transport {
	case taskapi.TransportKafka:
		producer, pErr := kafka.NewSyncProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if pErr != nil {
			logger.Error(ctx, "Failed to create Kafka producer: ", pErr)
			return
		}
		kd, kErr := taskapi.NewKafkaDispatcher(producer, cfg.Kafka.DispatchTopic)
		if kErr != nil {
			logger.Error(ctx, "Failed to create Kafka dispatcher: ", kErr)
			return
		}
		defer kd.Close()
		dispatcher = kd
		logger.Infof(ctx, "✅ Dispatch: kafka topic %s", cfg.Kafka.DispatchTopic)
	default:
		hc, hErr := taskapi.NewClient(cfg.TaskAPI.BaseURL, cfg.TaskAPI.APIKey, cfg.TaskAPI.Timeout)
		if hErr != nil {
			logger.Error(ctx, "Failed to create task API client: ", hErr)
			return
		}
		dispatcher = hc
		logger.Infof(ctx, "✅ Dispatch: http %s", cfg.TaskAPI.BaseURL)
	}

	// 5. Speech (optional)
	var sp speech.ISpeech
	if cfg.Speech.APIKey != "" {
		sc, sErr := speech.New(cfg.Speech.APIKey)
		if sErr != nil {
			logger.Warnf(ctx, "Speech disabled: %v", sErr)
		} else {
			if cfg.Speech.BaseURL != "" {
				sc = sc.WithBaseURL(cfg.Speech.BaseURL)
			}
			sp = sc.WithModels(cfg.Speech.TTSModel, cfg.Speech.STTModel).WithVoice(cfg.Speech.Voice)
			logger.Info(ctx, "✅ Speech enabled")
		}
	} else {
		logger.Info(ctx, "Speech disabled (speech.api_key not set)")
	}

	// 6. Public URLs: explicit config first, then an ngrok tunnel
	bot := telegram.NewBot(cfg.Telegram.BotToken)
	publicBase := cfg.Callback.PublicURL
	webhookURL := cfg.Telegram.WebhookURL
	if (publicBase == "" || webhookURL == "") && cfg.Ngrok.APIURL != "" {
		ngrokURL, ngrokErr := newNgrokProbe(cfg.Ngrok.APIURL).publicURL(ctx)
		if ngrokErr != nil {
			logger.Warnf(ctx, "Could not detect ngrok URL: %v", ngrokErr)
		} else {
			logger.Infof(ctx, "Auto-detected ngrok URL: %s", ngrokURL)
			if publicBase == "" {
				publicBase = ngrokURL
			}
			if webhookURL == "" {
				webhookURL = ngrokURL + "/webhook/telegram"
			}
		}
	}
	callbackURL := ""
	if publicBase != "" {
		callbackURL = publicBase + "/callback"
	} else {
		logger.Warn(ctx, "No public URL for callbacks; the task service must know where to call back")
	}

	// 7. Relay domain
	relayUC := usecase.New(logger, pending, dispatcher, bot, sp, flags, usecase.Config{
		PendingTTL:    cfg.Redis.PendingTTL,
		MaxIterations: cfg.TaskAPI.MaxIterations,
		CallbackURL:   callbackURL,
		Branch:        cfg.TaskAPI.Branch,
	})

	telegramHandler := tgDelivery.New(logger, relayUC, bot, sp, flags, tgDelivery.Config{
		SecretToken:     cfg.Telegram.WebhookSecret,
		AllowedChatIDs:  cfg.Telegram.AllowedChatIDs,
		AdminUserIDs:    cfg.Telegram.AdminUserIDs,
		RateLimitPerMin: cfg.Telegram.RateLimitPerMin,
		ProcessTimeout:  cfg.Telegram.ProcessTimeout,
	})

	security := webhook.NewSecurityValidator(webhook.SecurityConfig{
		Secret:     cfg.Callback.Secret,
		AllowedIPs: cfg.Callback.AllowedIPs,
	})
	if security.Open() {
		logger.Warn(ctx, "callback.secret not set: /callback accepts unauthenticated requests")
	}
	callbackHandler := callbackHTTP.New(logger, relayUC, security)

	if webhookURL != "" {
		if whErr := bot.SetWebhook(ctx, webhookURL, cfg.Telegram.WebhookSecret); whErr != nil {
			logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
		} else {
			logger.Infof(ctx, "✅ Telegram webhook registered at %s", webhookURL)
		}
	}

	// 8. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		TrustedProxies:  cfg.HTTPServer.TrustedProxies,
		Redis:           rdb,
		TelegramHandler: telegramHandler,
		CallbackHandler: callbackHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 9. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
