// Package chat provides host.Chat sinks for running outside a host.
package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/host"
)

// defaultHistory bounds each conversation when no limit is given.
const defaultHistory = 50

// Message is one delivered instruction.
type Message struct {
	Text      string
	UserID    string
	CreatedAt time.Time
}

// Memory keeps a bounded history of instructions per conversation. When a
// conversation exceeds its limit the oldest messages are dropped, except
// the first, which stays as initial context.
type Memory struct {
	logger      *zap.Logger
	maxMessages int

	mu            sync.Mutex
	conversations map[string][]Message
}

// NewMemory creates a Memory holding at most maxMessages per conversation.
func NewMemory(logger *zap.Logger, maxMessages int) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxMessages <= 0 {
		maxMessages = defaultHistory
	}
	return &Memory{
		logger:        logger.Named("chat"),
		maxMessages:   maxMessages,
		conversations: make(map[string][]Message),
	}
}

// ConversationKey returns the conversation an instruction lands in: its
// ConversationID, else one per user.
func ConversationKey(in host.Instruction) string {
	switch {
	case in.ConversationID != "":
		return in.ConversationID
	case in.UserID != "":
		return "user:" + in.UserID
	default:
		return "default"
	}
}

// AppendInstruction implements host.Chat.
func (m *Memory) AppendInstruction(_ context.Context, in host.Instruction) error {
	key := ConversationKey(in)

	m.mu.Lock()
	msgs := append(m.conversations[key], Message{
		Text:      in.Text,
		UserID:    in.UserID,
		CreatedAt: time.Now().UTC(),
	})
	if len(msgs) > m.maxMessages {
		trimmed := make([]Message, 0, m.maxMessages)
		trimmed = append(trimmed, msgs[0])
		excess := len(msgs) - m.maxMessages
		trimmed = append(trimmed, msgs[1+excess:]...)
		msgs = trimmed
	}
	m.conversations[key] = msgs
	m.mu.Unlock()

	m.logger.Info("instruction appended",
		zap.String("conversation", key),
		zap.String("user_id", in.UserID),
		zap.Int("chars", len(in.Text)))
	return nil
}

// Messages returns a copy of a conversation's history.
func (m *Memory) Messages(conversation string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.conversations[conversation]
	result := make([]Message, len(msgs))
	copy(result, msgs)
	return result
}

// Len returns the number of messages in a conversation.
func (m *Memory) Len(conversation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.conversations[conversation])
}

// Reset clears every conversation.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations = make(map[string][]Message)
}
