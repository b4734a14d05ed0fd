package chat

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/guardline/report-service/internal/domain"
	"github.com/guardline/report-service/internal/events"
	apperrors "github.com/guardline/report-service/pkg/util"
)

type stubCall struct {
	input string
	prev  *Exchange
}

type stubBackend struct {
	mu    sync.Mutex
	calls []stubCall
	body  []byte
	err   error
}

func (b *stubBackend) Ask(_ context.Context, userInput string, prev *Exchange) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, stubCall{input: userInput, prev: prev})
	if b.err != nil {
		return nil, b.err
	}
	return b.body, nil
}

type blockingBackend struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) Ask(context.Context, string, *Exchange) ([]byte, error) {
	b.started <- struct{}{}
	<-b.release
	return []byte(`{"answer":"done"}`), nil
}

func newTestOrchestrator(backend Backend) (*Orchestrator, SessionStore) {
	sessions := NewMemorySessionStore()
	return NewOrchestrator(backend, sessions, events.NewInMemoryDispatcher(), zap.NewNop()), sessions
}

func TestSendResolvesInnerJSONReply(t *testing.T) {
	backend := &stubBackend{body: []byte(`{"answer":"{\"response\":\"stay alert\",\"suspicious\":true}"}`)}
	orch, sessions := newTestOrchestrator(backend)

	result, err := orch.Send(context.Background(), "", "saw something odd")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if result.Reply.Text != "stay alert" {
		t.Fatalf("expected inner response, got %q", result.Reply.Text)
	}
	if !result.Reply.Suspicious {
		t.Fatalf("expected suspicious flag from inner payload")
	}
	if result.SessionID == "" {
		t.Fatalf("expected a generated session id")
	}

	history, err := sessions.History(context.Background(), result.SessionID)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user+bot turns, got %d", len(history))
	}
	if history[0].Sender != domain.ChatSenderUser || history[1].Sender != domain.ChatSenderBot {
		t.Fatalf("unexpected turn order: %+v", history)
	}
}

func TestSendDegradesToPlainTextReply(t *testing.T) {
	backend := &stubBackend{body: []byte(`{"answer":"just a plain sentence"}`)}
	orch, _ := newTestOrchestrator(backend)

	result, err := orch.Send(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if result.Reply.Text != "just a plain sentence" {
		t.Fatalf("expected plain text reply, got %q", result.Reply.Text)
	}
	if result.Reply.Suspicious {
		t.Fatalf("plain replies must not be marked suspicious")
	}
}

func TestSendRejectsBlankMessage(t *testing.T) {
	orch, _ := newTestOrchestrator(&stubBackend{body: []byte(`{"answer":"x"}`)})

	_, err := orch.Send(context.Background(), "s1", "   ")
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestSendWhileWaitingIsRejected(t *testing.T) {
	backend := &blockingBackend{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	orch, sessions := newTestOrchestrator(backend)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := orch.Send(ctx, "busy-session", "first")
		done <- err
	}()
	<-backend.started

	before, _ := sessions.History(ctx, "busy-session")
	_, err := orch.Send(ctx, "busy-session", "second")
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "BUSY" {
		t.Fatalf("expected BUSY while waiting, got %v", err)
	}
	after, _ := sessions.History(ctx, "busy-session")
	if len(after) != len(before) {
		t.Fatalf("rejected submit must not touch history: %d -> %d", len(before), len(after))
	}

	close(backend.release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// state returned to Idle: a new send succeeds
	if _, err := orch.Send(ctx, "busy-session", "third"); err != nil {
		t.Fatalf("send after release failed: %v", err)
	}
}

func TestSendUpstreamFailureRecordsFallback(t *testing.T) {
	backend := &stubBackend{err: apperrors.NewUpstreamError("chat backend returned status 500", nil)}
	orch, sessions := newTestOrchestrator(backend)
	ctx := context.Background()

	result, err := orch.Send(ctx, "s-fail", "hello?")
	if de := apperrors.ToDomainError(err); de == nil || de.Code != "UPSTREAM_FAILED" {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if result == nil || result.Reply.Text != FallbackReply {
		t.Fatalf("expected fallback reply, got %+v", result)
	}

	history, _ := sessions.History(ctx, "s-fail")
	if len(history) != 2 || history[1].Text != FallbackReply {
		t.Fatalf("fallback turn not recorded: %+v", history)
	}

	// back to Idle: no retry happened, next send is a fresh attempt
	backend.mu.Lock()
	backend.err = nil
	backend.body = []byte(`{"answer":"recovered"}`)
	calls := len(backend.calls)
	backend.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one upstream attempt, got %d", calls)
	}
	if _, err := orch.Send(ctx, "s-fail", "again"); err != nil {
		t.Fatalf("send after failure: %v", err)
	}
}

func TestSendCarriesLastExchange(t *testing.T) {
	backend := &stubBackend{body: []byte(`{"answer":"first reply"}`)}
	orch, _ := newTestOrchestrator(backend)
	ctx := context.Background()

	if _, err := orch.Send(ctx, "s-ctx", "first question"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if _, err := orch.Send(ctx, "s-ctx", "second question"); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.calls) != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", len(backend.calls))
	}
	if backend.calls[0].prev != nil {
		t.Fatalf("first call must carry no prior exchange")
	}
	prev := backend.calls[1].prev
	if prev == nil || prev.UserText != "first question" || prev.BotText != "first reply" {
		t.Fatalf("expected prior (user, bot) exchange, got %+v", prev)
	}
}

func TestMemorySessionStoreTrimsHistory(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	for i := 0; i < historyWindow+7; i++ {
		if err := store.Append(ctx, "s-trim", domain.ChatTurn{Sender: domain.ChatSenderUser, Text: "x"}); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	history, err := store.History(ctx, "s-trim")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != historyWindow {
		t.Fatalf("expected history trimmed to %d, got %d", historyWindow, len(history))
	}
}
