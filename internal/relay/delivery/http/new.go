package http

import (
	"github.com/gin-gonic/gin"

	"telegram-task-relay/internal/relay"
	"telegram-task-relay/internal/webhook"
	"telegram-task-relay/pkg/log"
)

// Handler is the public interface for the callback HTTP delivery layer.
type Handler interface {
	Callback(c *gin.Context)
}

type handler struct {
	l        log.Logger
	uc       relay.UseCase
	security *webhook.SecurityValidator
}

// New creates a new HTTP handler for task-execution callbacks.
func New(l log.Logger, uc relay.UseCase, security *webhook.SecurityValidator) Handler {
	return &handler{
		l:        l,
		uc:       uc,
		security: security,
	}
}
