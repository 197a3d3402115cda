// Package pubsub abstracts the downstream publish endpoint. Messages use the
// broker message and header types; backends report the endpoint-assigned
// message identifier.
package pubsub

import (
	"context"

	"github.com/velmie/broker"
)

// HeaderSource is the attribute naming the producing component.
const HeaderSource = "source"

// HeaderRequestID is the attribute carrying the caller's idempotency token.
const HeaderRequestID = "request_id"

// Publisher delivers a message to a topic and returns the identifier the
// endpoint assigned to it. Publish blocks until the endpoint acknowledges or
// ctx expires.
type Publisher interface {
	Publish(ctx context.Context, topic string, message *broker.Message) (string, error)
}
