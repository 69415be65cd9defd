package telegram

import "encoding/json"

// response is the envelope of every Bot API reply.
type response struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// User is a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Message is an incoming text message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

// Update is a single event returned by getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Command returns the bot command at the start of the message text, without
// a trailing "@botname", or the empty string.
func (m *Message) Command() string {
	if m == nil || len(m.Text) == 0 || m.Text[0] != '/' {
		return ""
	}

	cmd := m.Text
	for i, r := range cmd {
		if r == ' ' || r == '\n' || r == '@' {
			cmd = cmd[:i]
			break
		}
	}
	return cmd
}
