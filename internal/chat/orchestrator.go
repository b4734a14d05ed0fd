package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guardline/report-service/internal/domain"
	"github.com/guardline/report-service/internal/events"
	"github.com/guardline/report-service/internal/resolver"
	apperrors "github.com/guardline/report-service/pkg/util"
)

// FallbackReply is appended as the bot turn whenever the upstream call
// fails. Clients render it alongside the surfaced error.
const FallbackReply = "Sorry, I couldn't reach the assistant right now. Please try again in a moment."

// Result is the outcome of one chat exchange.
type Result struct {
	SessionID string
	Reply     domain.ChatTurn
}

// Orchestrator runs one exchange at a time per session. While a request
// is outstanding the session is Waiting and further submissions are
// rejected; error and success both return the session to Idle.
type Orchestrator struct {
	backend    Backend
	sessions   SessionStore
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu      sync.Mutex
	waiting map[string]bool
}

// NewOrchestrator constructs the orchestrator.
func NewOrchestrator(backend Backend, sessions SessionStore, dispatcher events.Dispatcher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		backend:    backend,
		sessions:   sessions,
		dispatcher: dispatcher,
		logger:     logger,
		waiting:    make(map[string]bool),
	}
}

// Send submits one user utterance. An empty sessionID starts a new
// session. On upstream failure the fallback bot turn is still recorded
// and returned with the error so callers can render both.
func (o *Orchestrator) Send(ctx context.Context, sessionID, message string) (*Result, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	o.mu.Lock()
	if o.waiting[sessionID] {
		o.mu.Unlock()
		return nil, apperrors.NewBusy("a reply is still being generated for this session")
	}
	o.waiting[sessionID] = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.waiting, sessionID)
		o.mu.Unlock()
	}()

	history, err := o.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prev := lastExchange(history)

	userTurn := domain.ChatTurn{Sender: domain.ChatSenderUser, Text: message, At: time.Now()}
	if err := o.sessions.Append(ctx, sessionID, userTurn); err != nil {
		return nil, err
	}

	raw, err := o.backend.Ask(ctx, message, prev)
	if err != nil {
		fallback := domain.ChatTurn{Sender: domain.ChatSenderBot, Text: FallbackReply, At: time.Now()}
		if appendErr := o.sessions.Append(ctx, sessionID, fallback); appendErr != nil {
			o.logger.Warn("failed to record fallback turn", zap.Error(appendErr))
		}
		o.logger.Warn("chat upstream failed", zap.String("session_id", sessionID), zap.Error(err))
		return &Result{SessionID: sessionID, Reply: fallback}, err
	}

	text := resolver.ResolveBytes(raw)
	reply, suspicious, parseErr := parseInner(text)
	degraded := parseErr != nil
	if degraded {
		o.logger.Debug("secondary reply parse failed; using plain text",
			zap.String("session_id", sessionID), zap.Error(parseErr))
	}

	botTurn := domain.ChatTurn{
		Sender:     domain.ChatSenderBot,
		Text:       reply,
		Suspicious: suspicious,
		At:         time.Now(),
	}
	if err := o.sessions.Append(ctx, sessionID, botTurn); err != nil {
		return nil, err
	}

	o.publish(ctx, events.Event{
		Type:      events.EventChatExchangeCompleted,
		SessionID: sessionID,
		Payload: events.ChatExchangeCompletedPayload{
			Suspicious: suspicious,
			ReplyChars: len(reply),
			Degraded:   degraded,
		},
	})

	return &Result{SessionID: sessionID, Reply: botTurn}, nil
}

// History returns the recorded turns for a session.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	return o.sessions.History(ctx, sessionID)
}

// parseInner attempts the secondary parse of a resolved reply: replies
// may themselves be JSON-encoded with response/suspicious fields. A
// failed parse degrades to the plain text, not suspicious.
func parseInner(text string) (reply string, suspicious bool, err error) {
	var inner struct {
		Response   string `json:"response"`
		Suspicious bool   `json:"suspicious"`
	}
	if unmarshalErr := json.Unmarshal([]byte(text), &inner); unmarshalErr != nil {
		return text, false, apperrors.NewMalformedPayload(unmarshalErr)
	}
	if strings.TrimSpace(inner.Response) == "" {
		return text, false, apperrors.NewMalformedPayload(errors.New("no response field"))
	}
	return inner.Response, inner.Suspicious, nil
}

// lastExchange finds the most recent completed (user, bot) pair.
func lastExchange(history []domain.ChatTurn) *Exchange {
	for i := len(history) - 1; i > 0; i-- {
		if history[i].Sender == domain.ChatSenderBot && history[i-1].Sender == domain.ChatSenderUser {
			return &Exchange{UserText: history[i-1].Text, BotText: history[i].Text}
		}
	}
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = o.dispatcher.Publish(ctx, event)
}
