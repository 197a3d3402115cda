package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/velmie/broker"
)

// Published is a message delivered to the in-memory publisher.
type Published struct {
	Topic     string
	MessageID string
	Message   *broker.Message
}

// Memory is an in-process Publisher that assigns UUID message ids. It keeps
// every delivered message and supports failure injection, which makes it the
// backend for tests and local runs.
type Memory struct {
	mu        sync.Mutex
	published []Published
	failWith  error
}

// NewMemory creates an in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// FailWith makes subsequent Publish calls return err. Pass nil to restore
// normal operation.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Publish records the message and returns a freshly minted id.
func (m *Memory) Publish(ctx context.Context, topic string, message *broker.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	broker.SetIDHeader(message)
	id := uuid.NewString()
	m.published = append(m.published, Published{Topic: topic, MessageID: id, Message: message})
	return id, nil
}

// Published returns a snapshot of all delivered messages.
func (m *Memory) Published() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Published, len(m.published))
	copy(out, m.published)
	return out
}
