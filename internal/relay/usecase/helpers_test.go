package usecase_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"telegram-task-relay/internal/relay"
	"telegram-task-relay/internal/relay/repository"
	pendingRedis "telegram-task-relay/internal/relay/repository/redis"
	"telegram-task-relay/internal/relay/usecase"
	"telegram-task-relay/internal/settings"
	"telegram-task-relay/pkg/taskapi"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Info(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Error(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...any)                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Panic(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...any)  {}

type sendAttempt struct {
	chatID int64
	text   string
	opts   pkgTelegram.SendOptions
	err    error
}

type mockMessenger struct {
	mu       sync.Mutex
	attempts []sendAttempt
	// failModes makes a send with the given parse mode fail with the mapped error.
	failModes map[string]error
	failAll   error
	// replyGone rejects every threaded send, as Telegram does once the prompt is deleted.
	replyGone bool

	voiceErr       error
	voices         []string
	voiceFileFound bool
}

func (m *mockMessenger) SendMessageWithOptions(ctx context.Context, chatID int64, text string, opts pkgTelegram.SendOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.failAll
	if e, ok := m.failModes[opts.ParseMode]; ok && err == nil {
		err = e
	}
	if m.replyGone && opts.ReplyToMessageID != 0 && err == nil {
		err = &pkgTelegram.RequestError{Method: "sendMessage", StatusCode: 400, ErrorCode: 400, Description: "Bad Request: message to be replied not found"}
	}
	m.attempts = append(m.attempts, sendAttempt{chatID: chatID, text: text, opts: opts, err: err})
	return err
}

func (m *mockMessenger) SendVoice(ctx context.Context, chatID int64, filePath string, replyTo int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = append(m.voices, filePath)
	if _, err := os.Stat(filePath); err == nil {
		m.voiceFileFound = true
	}
	return m.voiceErr
}

// delivered returns the messages that were accepted.
func (m *mockMessenger) delivered() []sendAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sendAttempt
	for _, a := range m.attempts {
		if a.err == nil {
			out = append(out, a)
		}
	}
	return out
}

type mockDispatcher struct {
	mu       sync.Mutex
	requests []taskapi.DispatchRequest
	err      error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, req taskapi.DispatchRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.err
}

type mockSpeech struct {
	audio []byte
	err   error
	calls int
	input string
}

func (m *mockSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.calls++
	m.input = text
	return m.audio, m.err
}

func (m *mockSpeech) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return "", errors.New("not used")
}

var errParse = &pkgTelegram.RequestError{
	Method:      "sendMessage",
	StatusCode:  400,
	ErrorCode:   400,
	Description: "Bad Request: can't parse entities: Can't find end of the entity starting at byte offset 12",
}

type testEnv struct {
	uc         relay.UseCase
	repo       repository.PendingRepository
	mr         *miniredis.Miniredis
	messenger  *mockMessenger
	dispatcher *mockDispatcher
	speech     *mockSpeech
	flags      settings.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := &testEnv{
		repo:       pendingRedis.New(rdb, "", &mockLogger{}),
		mr:         mr,
		messenger:  &mockMessenger{},
		dispatcher: &mockDispatcher{},
		speech:     &mockSpeech{audio: []byte("OggS-fake")},
		flags:      settings.NewMemoryStore(nil),
	}
	env.uc = usecase.New(&mockLogger{}, env.repo, env.dispatcher, env.messenger, env.speech, env.flags, usecase.Config{
		CallbackURL: "https://relay.example.com/callback",
		TempDir:     t.TempDir(),
	})
	return env
}
