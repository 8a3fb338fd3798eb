package telegram

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"telegram-task-relay/internal/relay"
	"telegram-task-relay/internal/settings"
	"telegram-task-relay/internal/webhook"
	pkgLog "telegram-task-relay/pkg/log"
	"telegram-task-relay/pkg/speech"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

// DefaultProcessTimeout bounds the background work done for one update.
const DefaultProcessTimeout = 2 * time.Minute

// Handler is the public interface for the Telegram webhook.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// Bot is the part of the Bot API the inbound router needs. *telegram.Bot satisfies it.
type Bot interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithOptions(ctx context.Context, chatID int64, text string, opts pkgTelegram.SendOptions) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
	GetFile(ctx context.Context, fileID string) (pkgTelegram.File, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// Config tunes the inbound router.
type Config struct {
	SecretToken     string  // expected X-Telegram-Bot-Api-Secret-Token; empty disables the check
	AllowedChatIDs  []int64 // empty allows every chat
	AdminUserIDs    []int64 // users allowed to change /debug and /audio; empty means nobody
	RateLimitPerMin int     // per chat; zero disables
	ProcessTimeout  time.Duration
}

type handler struct {
	l       pkgLog.Logger
	uc      relay.UseCase
	bot     Bot
	speech  speech.ISpeech
	flags   settings.Store
	limiter *webhook.RateLimiter
	allowed map[int64]struct{}
	admins  map[int64]struct{}
	cfg     Config
}

// New creates the Telegram webhook handler. sp may be nil, in which case voice messages are declined.
func New(l pkgLog.Logger, uc relay.UseCase, bot Bot, sp speech.ISpeech, flags settings.Store, cfg Config) Handler {
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = DefaultProcessTimeout
	}
	allowed := idSet(cfg.AllowedChatIDs)
	admins := idSet(cfg.AdminUserIDs)
	return &handler{
		l:       l,
		uc:      uc,
		bot:     bot,
		speech:  sp,
		flags:   flags,
		limiter: webhook.NewRateLimiter(cfg.RateLimitPerMin),
		allowed: allowed,
		admins:  admins,
		cfg:     cfg,
	}
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
