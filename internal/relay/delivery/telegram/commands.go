package telegram

import (
	"context"
	"fmt"
	"strings"

	pkgTelegram "telegram-task-relay/pkg/telegram"
)

const (
	startText = "👋 Welcome!\n\nSend me a task in plain words and I will hand it to the task runner. " +
		"The result comes back here when it is done, even if that takes a few minutes.\n\n" +
		"Voice messages work too. Type /help for commands."

	helpText = "*Commands*\n\n" +
		"/start: introduction\n" +
		"/help: this message\n" +
		"/id: show chat and user IDs\n" +
		"/debug [on|off]: show run metadata with results\n" +
		"/audio [on|off]: answer voice messages with voice\n" +
		"(changing a setting is limited to admins)\n\n" +
		"Anything else is sent to the task runner."
)

// handleCommand answers local commands. handled is false for text that should be forwarded.
func (h *handler) handleCommand(ctx context.Context, in inbound, text string) (bool, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return false, nil
	}
	// "/debug@my_bot on" addresses a specific bot in groups.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	switch cmd {
	case "/start":
		return true, h.bot.SendMessage(ctx, in.chatID, startText)
	case "/help":
		return true, h.reply(ctx, in.chatID, helpText, pkgTelegram.ParseModeMarkdown)
	case "/id":
		return true, h.reply(ctx, in.chatID,
			fmt.Sprintf("Chat ID: `%d`\nUser ID: `%d`", in.chatID, in.userID), pkgTelegram.ParseModeMarkdown)
	case "/debug":
		return true, h.toggle(ctx, in, "🐞 Debug mode", args, h.flags.DebugMode, h.flags.SetDebugMode)
	case "/audio":
		return true, h.toggle(ctx, in, "🔊 Voice replies", args, h.flags.AudioEnabled, h.flags.SetAudioEnabled)
	default:
		return false, nil
	}
}

// toggle reports a flag, or sets it when an argument is given. Only admins may set flags;
// they apply to every chat.
func (h *handler) toggle(
	ctx context.Context,
	in inbound,
	label string,
	args []string,
	get func(context.Context) bool,
	set func(context.Context, bool) error,
) error {
	if len(args) > 0 {
		var on bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			on = true
		case "off", "false", "0":
			on = false
		default:
			return h.bot.SendMessage(ctx, in.chatID, fmt.Sprintf("%s: expected on or off, got %q", label, args[0]))
		}
		if !h.isAdmin(in.userID) {
			h.l.Warnf(ctx, "telegram handler: user %d in chat %d tried to change %s", in.userID, in.chatID, label)
			return h.bot.SendMessage(ctx, in.chatID, msgAdminOnly)
		}
		if err := set(ctx, on); err != nil {
			return fmt.Errorf("set %s: %w", label, err)
		}
	}
	return h.bot.SendMessage(ctx, in.chatID, fmt.Sprintf("%s: %s", label, onOff(get(ctx))))
}

func (h *handler) isAdmin(userID int64) bool {
	_, ok := h.admins[userID]
	return ok
}

// reply sends with markup and retries as plain text if Telegram rejects it.
func (h *handler) reply(ctx context.Context, chatID int64, text, parseMode string) error {
	err := h.bot.SendMessageWithOptions(ctx, chatID, text, pkgTelegram.SendOptions{ParseMode: parseMode})
	if pkgTelegram.IsParseError(err) {
		return h.bot.SendMessage(ctx, chatID, text)
	}
	return err
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
