package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guardline/report-service/internal/domain"
)

// historyWindow bounds how many turns a session retains.
const historyWindow = 20

// SessionStore holds per-session conversation history.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)
	Append(ctx context.Context, sessionID string, turns ...domain.ChatTurn) error
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.ChatTurn
}

// NewMemorySessionStore keeps session history in process memory.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string][]domain.ChatTurn)}
}

func (s *memorySessionStore) History(_ context.Context, sessionID string) ([]domain.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.sessions[sessionID]
	out := make([]domain.ChatTurn, len(history))
	copy(out, history)
	return out, nil
}

func (s *memorySessionStore) Append(_ context.Context, sessionID string, turns ...domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.sessions[sessionID], turns...)
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	s.sessions[sessionID] = history
	return nil
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore keeps session history in Redis so it survives
// process restarts. Idle sessions expire after ttl.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

func (s *redisSessionStore) History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	raw, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	history := make([]domain.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn domain.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		history = append(history, turn)
	}
	return history, nil
}

func (s *redisSessionStore) Append(ctx context.Context, sessionID string, turns ...domain.ChatTurn) error {
	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	for _, turn := range turns {
		encoded, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, key, encoded)
	}
	pipe.LTrim(ctx, key, -historyWindow, -1)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}
