package telegram

import pkgTelegram "telegram-task-relay/pkg/telegram"

// HeaderSecretToken carries the secret registered through setWebhook.
const HeaderSecretToken = "X-Telegram-Bot-Api-Secret-Token"

type updateKind string

const (
	kindMessage       updateKind = "message"
	kindEditedMessage updateKind = "edited_message"
	kindCallbackQuery updateKind = "callback_query"
)

// inbound is the part of an update the router acts on, whatever its kind.
type inbound struct {
	kind       updateKind
	chatID     int64
	messageID  int64
	userID     int64
	text       string
	fileID     string // voice or audio attachment
	fileName   string
	fileSize   int64
	callbackID string
}

// classify extracts the routable part of an update. ok is false for update kinds the
// relay does not handle.
func classify(update pkgTelegram.Update) (inbound, bool) {
	switch {
	case update.Message != nil:
		return fromMessage(kindMessage, update.Message)
	case update.EditedMessage != nil:
		return fromMessage(kindEditedMessage, update.EditedMessage)
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil {
			return inbound{}, false
		}
		in := inbound{
			kind:       kindCallbackQuery,
			chatID:     cq.Message.Chat.ID,
			messageID:  cq.Message.MessageID,
			text:       cq.Data,
			callbackID: cq.ID,
		}
		if cq.From != nil {
			in.userID = cq.From.ID
		}
		return in, true
	default:
		return inbound{}, false
	}
}

func fromMessage(kind updateKind, msg *pkgTelegram.Message) (inbound, bool) {
	if msg.Chat == nil {
		return inbound{}, false
	}
	in := inbound{
		kind:      kind,
		chatID:    msg.Chat.ID,
		messageID: msg.MessageID,
		text:      msg.Text,
	}
	if in.text == "" {
		in.text = msg.Caption
	}
	if msg.From != nil {
		in.userID = msg.From.ID
	}
	switch {
	case msg.Voice != nil:
		in.fileID, in.fileSize = msg.Voice.FileID, msg.Voice.FileSize
	case msg.Audio != nil:
		in.fileID, in.fileName, in.fileSize = msg.Audio.FileID, msg.Audio.FileName, msg.Audio.FileSize
	}
	return in, true
}

func (in inbound) isSpeech() bool {
	return in.fileID != ""
}
