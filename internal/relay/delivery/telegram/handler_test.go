package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"telegram-task-relay/internal/model"
	"telegram-task-relay/internal/relay"
	"telegram-task-relay/internal/relay/delivery/telegram"
	"telegram-task-relay/internal/settings"
	"telegram-task-relay/pkg/speech"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Info(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Warn(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Error(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...interface{}) {}
func (m *mockLogger) Panic(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...interface{})  {}

type mockRelayUseCase struct {
	mu         sync.Mutex
	dispatched []relay.DispatchInput
}

func (m *mockRelayUseCase) Dispatch(ctx context.Context, in relay.DispatchInput) (relay.DispatchOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, in)
	return relay.DispatchOutput{RequestID: "telegram-1-aaaaaaaa", Dispatched: true}, nil
}

func (m *mockRelayUseCase) Resolve(ctx context.Context, id string) (model.PendingRequest, error) {
	return model.PendingRequest{}, relay.ErrUnknownRequest
}

func (m *mockRelayUseCase) HandleCallback(ctx context.Context, in relay.CallbackInput) (relay.CallbackOutput, error) {
	return relay.CallbackOutput{}, nil
}

func (m *mockRelayUseCase) Deliver(ctx context.Context, in relay.DeliverInput) error {
	return nil
}

func (m *mockRelayUseCase) inputs() []relay.DispatchInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]relay.DispatchInput(nil), m.dispatched...)
}

type mockSpeech struct {
	transcript string
	err        error
	gotName    string
}

func (m *mockSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (m *mockSpeech) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	m.gotName = filename
	return m.transcript, m.err
}

// ── Test Helpers ───────────────────────────────────────────────────────────

type captured struct {
	mu              sync.Mutex
	messages        []string
	callbackAnswers []string
}

func (c *captured) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

type testEnv struct {
	engine *gin.Engine
	uc     *mockRelayUseCase
	flags  settings.Store
	sent   *captured
}

func newTestEnv(t *testing.T, sp speech.ISpeech, cfg telegram.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sent := &captured{}
	tgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			if text, ok := payload["text"].(string); ok {
				sent.mu.Lock()
				sent.messages = append(sent.messages, text)
				sent.mu.Unlock()
			}
			w.Write([]byte(`{"ok":true,"result":{}}`))
		case strings.HasSuffix(r.URL.Path, "/answerCallbackQuery"):
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			sent.mu.Lock()
			sent.callbackAnswers = append(sent.callbackAnswers, payload["callback_query_id"].(string))
			sent.mu.Unlock()
			w.Write([]byte(`{"ok":true,"result":true}`))
		case strings.HasSuffix(r.URL.Path, "/getFile"):
			w.Write([]byte(`{"ok":true,"result":{"file_id":"voice-1","file_path":"voice/file_1.oga"}}`))
		case strings.HasPrefix(r.URL.Path, "/file/bottest-token/"):
			w.Write([]byte("OggS-fake-audio"))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(tgServer.Close)

	bot := pkgTelegram.NewBot("test-token")
	bot.SetAPIURL(tgServer.URL)

	uc := &mockRelayUseCase{}
	flags := settings.NewMemoryStore(nil)

	engine := gin.New()
	h := telegram.New(&mockLogger{}, uc, bot, sp, flags, cfg)
	engine.POST("/webhook/telegram", h.HandleWebhook)

	return &testEnv{engine: engine, uc: uc, flags: flags, sent: sent}
}

func postUpdate(engine *gin.Engine, update pkgTelegram.Update, headers map[string]string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(update)
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func textUpdate(text string) pkgTelegram.Update {
	return pkgTelegram.Update{
		UpdateID: 1,
		Message: &pkgTelegram.Message{
			MessageID: 1,
			Chat:      &pkgTelegram.Chat{ID: 123},
			From:      &pkgTelegram.User{ID: 456},
			Text:      text,
		},
	}
}

func sendWebhook(engine *gin.Engine, text string) *httptest.ResponseRecorder {
	return postUpdate(engine, textUpdate(text), nil)
}

func waitFor(cond func() bool, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) && !cond() {
		time.Sleep(20 * time.Millisecond)
	}
}

func waitForMessages(env *testEnv, atLeast int) []string {
	waitFor(func() bool { return len(env.sent.texts()) >= atLeast }, time.Second)
	return env.sent.texts()
}

func waitForDispatch(env *testEnv, atLeast int) []relay.DispatchInput {
	waitFor(func() bool { return len(env.uc.inputs()) >= atLeast }, time.Second)
	return env.uc.inputs()
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got: %v", substr, msgs)
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{})

	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleWebhook_SecretToken(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{SecretToken: "tg-secret"})

	if w := postUpdate(env.engine, textUpdate("hi"), map[string]string{telegram.HeaderSecretToken: "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if w := postUpdate(env.engine, textUpdate("hi"), map[string]string{telegram.HeaderSecretToken: "tg-secret"}); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHandleWebhook_UnhandledUpdate(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{})

	w := postUpdate(env.engine, pkgTelegram.Update{UpdateID: 1}, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ignored") {
		t.Errorf("expected ignored status, got %s", w.Body.String())
	}
}

func TestLocalCommands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/start", "Welcome"},
		{"/help", "Commands"},
		{"/id", "Chat ID: `123`"},
		{"/debug maybe", "expected on or off"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			env := newTestEnv(t, nil, telegram.Config{})
			if w := sendWebhook(env.engine, tt.text); w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			assertContains(t, waitForMessages(env, 1), tt.want)
			if n := len(env.uc.inputs()); n != 0 {
				t.Errorf("local command must not be forwarded, got %d dispatches", n)
			}
		})
	}
}

func TestToggleCommands(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{AdminUserIDs: []int64{456}})
	ctx := context.Background()

	sendWebhook(env.engine, "/debug on")
	assertContains(t, waitForMessages(env, 1), "Debug mode: on")
	if !env.flags.DebugMode(ctx) {
		t.Error("expected debug mode on")
	}

	_ = env.flags.SetAudioEnabled(ctx, true)
	sendWebhook(env.engine, "/audio@relay_bot off")
	assertContains(t, waitForMessages(env, 2), "Voice replies: off")
	if env.flags.AudioEnabled(ctx) {
		t.Error("expected audio disabled")
	}
}

func TestToggleCommands_NonAdmin(t *testing.T) {
	ctx := context.Background()

	for name, cfg := range map[string]telegram.Config{
		"no admins configured": {},
		"other admin":          {AdminUserIDs: []int64{999}},
	} {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, nil, cfg)

			sendWebhook(env.engine, "/debug on")
			assertContains(t, waitForMessages(env, 1), "Only admins")
			if env.flags.DebugMode(ctx) {
				t.Error("expected debug mode to stay off")
			}

			sendWebhook(env.engine, "/debug")
			assertContains(t, waitForMessages(env, 2), "Debug mode: off")
		})
	}
}

func TestForwardText(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{})

	sendWebhook(env.engine, "build the thing")
	inputs := waitForDispatch(env, 1)
	if len(inputs) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(inputs))
	}
	got := inputs[0]
	if got.ChatID != 123 || got.ReplyToMessageID != 1 || got.Prompt != "build the thing" || got.OriginalWasSpeech {
		t.Errorf("unexpected dispatch input: %+v", got)
	}
	assertContains(t, waitForMessages(env, 1), "Working on it")
}

func TestForwardEditedMessage(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{})

	update := pkgTelegram.Update{
		UpdateID: 2,
		EditedMessage: &pkgTelegram.Message{
			MessageID: 9,
			Chat:      &pkgTelegram.Chat{ID: 123},
			Text:      "build it again",
		},
	}
	postUpdate(env.engine, update, nil)
	inputs := waitForDispatch(env, 1)
	if len(inputs) != 1 || inputs[0].Prompt != "build it again" || inputs[0].ReplyToMessageID != 9 {
		t.Errorf("unexpected dispatch: %+v", inputs)
	}
}

func TestForwardCallbackQuery(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{})

	update := pkgTelegram.Update{
		UpdateID: 3,
		CallbackQuery: &pkgTelegram.CallbackQuery{
			ID:      "cbq-1",
			From:    &pkgTelegram.User{ID: 456},
			Message: &pkgTelegram.Message{MessageID: 7, Chat: &pkgTelegram.Chat{ID: 123}},
			Data:    "run the tests",
		},
	}
	postUpdate(env.engine, update, nil)

	inputs := waitForDispatch(env, 1)
	if len(inputs) != 1 || inputs[0].Prompt != "run the tests" {
		t.Fatalf("unexpected dispatch: %+v", inputs)
	}
	env.sent.mu.Lock()
	answers := append([]string(nil), env.sent.callbackAnswers...)
	env.sent.mu.Unlock()
	if len(answers) != 1 || answers[0] != "cbq-1" {
		t.Errorf("expected button press to be answered, got %v", answers)
	}
}

func TestForwardVoice(t *testing.T) {
	sp := &mockSpeech{transcript: "  deploy to staging "}
	env := newTestEnv(t, sp, telegram.Config{})

	update := pkgTelegram.Update{
		UpdateID: 4,
		Message: &pkgTelegram.Message{
			MessageID: 11,
			Chat:      &pkgTelegram.Chat{ID: 123},
			Voice:     &pkgTelegram.Voice{FileID: "voice-1", Duration: 3},
		},
	}
	postUpdate(env.engine, update, nil)

	inputs := waitForDispatch(env, 1)
	if len(inputs) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(inputs))
	}
	if inputs[0].Prompt != "deploy to staging" || !inputs[0].OriginalWasSpeech {
		t.Errorf("unexpected dispatch: %+v", inputs[0])
	}
	if sp.gotName != "file_1.oga" {
		t.Errorf("expected file name from file path, got %q", sp.gotName)
	}
}

func TestVoiceWithoutSpeechClient(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{})

	update := pkgTelegram.Update{
		UpdateID: 5,
		Message: &pkgTelegram.Message{
			MessageID: 12,
			Chat:      &pkgTelegram.Chat{ID: 123},
			Voice:     &pkgTelegram.Voice{FileID: "voice-1"},
		},
	}
	postUpdate(env.engine, update, nil)

	assertContains(t, waitForMessages(env, 1), "not supported")
	if len(env.uc.inputs()) != 0 {
		t.Error("did not expect a dispatch")
	}
}

func TestChatAllowlist(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{AllowedChatIDs: []int64{999}})

	sendWebhook(env.engine, "build the thing")
	time.Sleep(200 * time.Millisecond)

	if len(env.uc.inputs()) != 0 || len(env.sent.texts()) != 0 {
		t.Error("expected chats outside the allowlist to be ignored")
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, nil, telegram.Config{RateLimitPerMin: 6})

	sendWebhook(env.engine, "first")
	waitForDispatch(env, 1)
	sendWebhook(env.engine, "second")

	msgs := waitForMessages(env, 2)
	assertContains(t, msgs, "Too many requests")
	if n := len(env.uc.inputs()); n != 1 {
		t.Errorf("expected one dispatch, got %d", n)
	}
}
