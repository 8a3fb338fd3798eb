package usecase

import (
	"context"
	"time"

	"telegram-task-relay/internal/relay"
	"telegram-task-relay/internal/relay/repository"
	"telegram-task-relay/internal/settings"
	pkgLog "telegram-task-relay/pkg/log"
	"telegram-task-relay/pkg/speech"
	"telegram-task-relay/pkg/taskapi"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

// Messenger is the part of the chat API the relay sends through. *telegram.Bot satisfies it.
type Messenger interface {
	SendMessageWithOptions(ctx context.Context, chatID int64, text string, opts pkgTelegram.SendOptions) error
	SendVoice(ctx context.Context, chatID int64, filePath string, replyToMessageID int64) error
}

// Config holds the tunables of the relay use case.
type Config struct {
	PendingTTL    time.Duration
	MaxIterations int
	CallbackURL   string
	Branch        string // optional branch hint passed with every dispatch
	TempDir       string // where voice replies are staged; "" uses os.TempDir
}

type implUseCase struct {
	l          pkgLog.Logger
	repo       repository.PendingRepository
	dispatcher taskapi.Dispatcher
	messenger  Messenger
	speech     speech.ISpeech
	flags      settings.Reader
	cfg        Config
	now        func() time.Time
}

// New creates a new relay UseCase. sp may be nil, in which case every reply goes out as text.
func New(
	l pkgLog.Logger,
	repo repository.PendingRepository,
	dispatcher taskapi.Dispatcher,
	messenger Messenger,
	sp speech.ISpeech,
	flags settings.Reader,
	cfg Config,
) relay.UseCase {
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = repository.DefaultTTL
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = taskapi.DefaultMaxIterations
	}
	return &implUseCase{
		l:          l,
		repo:       repo,
		dispatcher: dispatcher,
		messenger:  messenger,
		speech:     sp,
		flags:      flags,
		cfg:        cfg,
		now:        time.Now,
	}
}
