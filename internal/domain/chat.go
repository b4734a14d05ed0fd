package domain

import "time"

// ChatSender identifies who produced a turn.
type ChatSender string

const (
	ChatSenderUser ChatSender = "user"
	ChatSenderBot  ChatSender = "bot"
)

// ChatTurn is one utterance in a chat session. Turns live only in
// session memory and are never written to the report store.
type ChatTurn struct {
	Sender     ChatSender `json:"sender"`
	Text       string     `json:"text"`
	Suspicious bool       `json:"suspicious,omitempty"`
	At         time.Time  `json:"at"`
}
