package telegram_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"telegram-task-relay/pkg/telegram"
)

func TestBot(t *testing.T) {
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if strings.HasSuffix(path, "/setWebhook") {
			var req map[string]interface{}
			json.NewDecoder(r.Body).Decode(&req)
			if req["url"] == "cause_error" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"ok": false, "error_code": 400, "description": "invalid url"}`))
				return
			}
			if req["url"] == "cause_500" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if req["secret_token"] != "s3cret" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"ok": false, "description": "missing secret"}`))
				return
			}
			w.Write([]byte(`{"ok": true, "result": true}`))
			return
		}

		if strings.HasSuffix(path, "/sendMessage") {
			var req map[string]interface{}
			json.NewDecoder(r.Body).Decode(&req)
			text := req["text"].(string)

			switch text {
			case "cause_error":
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"ok": false, "error_code": 400, "description": "Bad Request: can't parse entities: unexpected end"}`))
				return
			case "cause_500":
				w.WriteHeader(http.StatusInternalServerError)
				return
			case "reply":
				if req["reply_to_message_id"] != float64(77) {
					w.WriteHeader(http.StatusBadRequest)
					w.Write([]byte(`{"ok": false, "description": "missing reply"}`))
					return
				}
			}
			w.Write([]byte(`{"ok": true, "result": {"message_id": 1}}`))
			return
		}

		if strings.HasSuffix(path, "/getFile") {
			w.Write([]byte(`{"ok": true, "result": {"file_id": "f1", "file_path": "voice/file_1.oga"}}`))
			return
		}

		if strings.HasSuffix(path, "/file/bottest-token/voice/file_1.oga") {
			w.Write([]byte("OggS-audio"))
			return
		}

		if strings.HasSuffix(path, "/sendVoice") {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f, _, err := r.FormFile("voice")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"ok": false, "description": "no voice"}`))
				return
			}
			data, _ := io.ReadAll(f)
			if string(data) != "audio-bytes" || r.FormValue("chat_id") != "12345" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"ok": true, "result": {"message_id": 2}}`))
			return
		}

		if strings.HasSuffix(path, "/answerCallbackQuery") {
			w.Write([]byte(`{"ok": true, "result": true}`))
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	bot := telegram.NewBot("test-token")
	bot.SetAPIURL(ts.URL) // Route commands to test server instead of api.telegram.org

	t.Run("SetWebhook Success", func(t *testing.T) {
		if err := bot.SetWebhook(ctx, "https://example.com/webhook", "s3cret"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SetWebhook API Failed", func(t *testing.T) {
		err := bot.SetWebhook(ctx, "cause_error", "s3cret")
		if err == nil || !strings.Contains(err.Error(), "invalid url") {
			t.Fatalf("expected api failure error, got: %v", err)
		}
	})

	t.Run("SetWebhook HTTP Failed", func(t *testing.T) {
		if err := bot.SetWebhook(ctx, "cause_500", "s3cret"); err == nil {
			t.Fatalf("expected http error")
		}
	})

	t.Run("SendMessage Success", func(t *testing.T) {
		if err := bot.SendMessage(ctx, 12345, "Hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SendMessageWithMode Success", func(t *testing.T) {
		if err := bot.SendMessageWithMode(ctx, 12345, "Hello", telegram.ParseModeMarkdown); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SendMessageWithOptions Reply", func(t *testing.T) {
		err := bot.SendMessageWithOptions(ctx, 12345, "reply", telegram.SendOptions{ReplyToMessageID: 77})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SendMessage Parse Error", func(t *testing.T) {
		err := bot.SendMessage(ctx, 12345, "cause_error")
		if !telegram.IsParseError(err) {
			t.Fatalf("expected parse error, got: %v", err)
		}
		var reqErr *telegram.RequestError
		if !errors.As(err, &reqErr) || reqErr.ErrorCode != 400 {
			t.Errorf("expected RequestError with code 400, got %#v", err)
		}
	})

	t.Run("SendMessage HTTP Failed", func(t *testing.T) {
		err := bot.SendMessage(ctx, 12345, "cause_500")
		if err == nil {
			t.Fatalf("expected http error")
		}
		if telegram.IsParseError(err) {
			t.Errorf("500 must not be treated as a parse error")
		}
	})

	t.Run("GetFile and Download", func(t *testing.T) {
		f, err := bot.GetFile(ctx, "f1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := bot.DownloadFile(ctx, f.FilePath)
		if err != nil {
			t.Fatalf("unexpected download error: %v", err)
		}
		if string(data) != "OggS-audio" {
			t.Errorf("unexpected file contents: %q", data)
		}
	})

	t.Run("SendVoice Success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reply.ogg")
		if err := os.WriteFile(path, []byte("audio-bytes"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := bot.SendVoice(ctx, 12345, path, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SendVoice Missing File", func(t *testing.T) {
		if err := bot.SendVoice(ctx, 12345, filepath.Join(t.TempDir(), "nope.ogg"), 0); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})

	t.Run("AnswerCallbackQuery", func(t *testing.T) {
		if err := bot.AnswerCallbackQuery(ctx, "cb-1", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Invalid API URL logic", func(t *testing.T) {
		badBot := telegram.NewBot("test")
		badBot.SetAPIURL("http://invalid-url.local:1234")
		if err := badBot.SendMessage(ctx, 12345, "fail"); err == nil {
			t.Errorf("expected network failure on invalid domain")
		}
	})
}

func TestIsParseError(t *testing.T) {
	if telegram.IsParseError(nil) {
		t.Error("nil is not a parse error")
	}
	if !telegram.IsParseError(errors.New("Bad Request: can't parse entity at offset 3")) {
		t.Error("expected plain error text to be detected")
	}
	if telegram.IsParseError(&telegram.RequestError{Method: "sendMessage", StatusCode: 403, Description: "Forbidden: bot was blocked"}) {
		t.Error("forbidden is not a parse error")
	}
}

func TestSendVoice_RejectedBeforeUpload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Answer without reading the body so the client stops mid-upload.
		w.Header().Set("Connection", "close")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(`{"ok": false, "error_code": 413, "description": "Request Entity Too Large"}`))
	}))
	defer ts.Close()

	bot := telegram.NewBot("test-token")
	bot.SetAPIURL(ts.URL)

	path := filepath.Join(t.TempDir(), "big.ogg")
	if err := os.WriteFile(path, make([]byte, 8<<20), 0o600); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := bot.SendVoice(context.Background(), 12345, path, 0); err == nil {
			t.Fatal("expected an error from the rejected upload")
		}
	}
	if err := os.Remove(path); err != nil {
		t.Errorf("remove after failed uploads: %v", err)
	}
}
