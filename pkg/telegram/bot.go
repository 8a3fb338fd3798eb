package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultBaseURL = "https://api.telegram.org"

	// MaxDownloadBytes caps voice downloads (Bot API getFile limit is 20MB).
	MaxDownloadBytes = 20 * 1024 * 1024
)

// Bot is the Telegram Bot API client.
type Bot struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewBot creates a new Telegram Bot client with the given token.
func NewBot(token string) *Bot {
	return &Bot{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetAPIURL overrides the default Telegram API URL for testing purposes.
func (b *Bot) SetAPIURL(url string) {
	b.baseURL = url
}

func (b *Bot) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.baseURL, b.token, method)
}

// SetWebhook registers the webhook URL with Telegram. A non-empty secretToken is echoed back
// by Telegram in the X-Telegram-Bot-Api-Secret-Token header of every update.
func (b *Bot) SetWebhook(ctx context.Context, webhookURL, secretToken string) error {
	payload := map[string]interface{}{
		"url":             webhookURL,
		"allowed_updates": []string{"message", "edited_message", "callback_query"},
	}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}
	_, err := b.postJSON(ctx, "setWebhook", payload)
	return err
}

// SendMessage sends a plain text message to a Telegram chat.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	return b.SendMessageWithOptions(ctx, chatID, text, SendOptions{})
}

// SendMessageWithMode sends a message with optional parse mode (e.g. "Markdown").
func (b *Bot) SendMessageWithMode(ctx context.Context, chatID int64, text string, parseMode string) error {
	return b.SendMessageWithOptions(ctx, chatID, text, SendOptions{ParseMode: parseMode})
}

// SendMessageWithOptions sends a message with a parse mode and optional reply threading.
func (b *Bot) SendMessageWithOptions(ctx context.Context, chatID int64, text string, opts SendOptions) error {
	payload := SendMessageRequest{
		ChatID:           chatID,
		Text:             text,
		ParseMode:        opts.ParseMode,
		ReplyToMessageID: opts.ReplyToMessageID,

		AllowSendingWithoutReply: opts.AllowSendingWithoutReply,
	}
	_, err := b.postJSON(ctx, "sendMessage", payload)
	return err
}

// AnswerCallbackQuery stops the loading indicator on an inline button.
func (b *Bot) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	payload := map[string]string{"callback_query_id": callbackQueryID}
	if text != "" {
		payload["text"] = text
	}
	_, err := b.postJSON(ctx, "answerCallbackQuery", payload)
	return err
}

// GetFile resolves a file_id into a downloadable file path.
func (b *Bot) GetFile(ctx context.Context, fileID string) (File, error) {
	raw, err := b.postJSON(ctx, "getFile", map[string]string{"file_id": fileID})
	if err != nil {
		return File{}, err
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("failed to decode getFile result: %w", err)
	}
	if f.FilePath == "" {
		return File{}, fmt.Errorf("telegram getFile returned no file_path for %s", fileID)
	}
	return f, nil
}

// DownloadFile fetches a file previously resolved by GetFile.
func (b *Bot) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	url := fmt.Sprintf("%s/file/bot%s/%s", b.baseURL, b.token, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Method: "file", StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxDownloadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", MaxDownloadBytes)
	}
	return data, nil
}

// SendVoice uploads a local OGG/Opus file as a voice message.
func (b *Bot) SendVoice(ctx context.Context, chatID int64, filePath string, replyToMessageID int64) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open voice file: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.methodURL("sendVoice"), pr)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to create sendVoice request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// The writer owns f: Do may return, and close pr, before the copy has finished.
	go func() {
		defer f.Close()
		defer pw.Close()
		defer mw.Close()

		_ = mw.WriteField("chat_id", strconv.FormatInt(chatID, 10))
		if replyToMessageID != 0 {
			_ = mw.WriteField("reply_to_message_id", strconv.FormatInt(replyToMessageID, 10))
		}
		part, err := mw.CreateFormFile("voice", filepath.Base(filePath))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			_ = pw.CloseWithError(err)
		}
	}()

	_, err = b.do(req, "sendVoice")
	return err
}

func (b *Bot) postJSON(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, method)
}

func (b *Bot) do(req *http.Request, method string) (json.RawMessage, error) {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var apiResp APIResponse
	_ = json.Unmarshal(raw, &apiResp)

	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		desc := apiResp.Description
		if desc == "" {
			desc = string(bytes.TrimSpace(raw))
		}
		return nil, &RequestError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   apiResp.ErrorCode,
			Description: desc,
		}
	}
	return apiResp.Result, nil
}
