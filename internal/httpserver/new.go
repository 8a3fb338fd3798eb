package httpserver

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"telegram-task-relay/internal/middleware"
	callbackHTTP "telegram-task-relay/internal/relay/delivery/http"
	tgDelivery "telegram-task-relay/internal/relay/delivery/telegram"
	"telegram-task-relay/pkg/log"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string
	mw          middleware.Middleware

	// Readiness
	redis goredis.UniversalClient

	// Relay domain
	telegramHandler tgDelivery.Handler
	callbackHandler callbackHTTP.Handler
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	// TrustedProxies may set X-Forwarded-For / X-Real-IP. Empty trusts none, so the client IP
	// is always the connection's remote address.
	TrustedProxies []string

	// Redis is pinged by /ready. Nil when the pending store is in memory.
	Redis goredis.UniversalClient

	// Relay domain
	TelegramHandler tgDelivery.Handler
	CallbackHandler callbackHTTP.Handler
}

// New creates a new HTTPServer instance and registers its routes.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:               logger,
		gin:             gin.New(),
		port:            cfg.Port,
		mode:            cfg.Mode,
		environment:     cfg.Environment,
		mw:              middleware.New(logger),
		redis:           cfg.Redis,
		telegramHandler: cfg.TelegramHandler,
		callbackHandler: cfg.CallbackHandler,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	if err := srv.gin.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	if err := srv.mapHandlers(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	return nil
}
