// Package publish implements the idempotent publish service: it
// deduplicates inbound requests by their idempotency token and forwards
// undeduplicated messages to the publish endpoint.
package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/velmie/broker"

	"github.com/cloudcatalog/itemsvc/internal/apperr"
	"github.com/cloudcatalog/itemsvc/internal/dedup"
	"github.com/cloudcatalog/itemsvc/internal/model"
	"github.com/cloudcatalog/itemsvc/internal/obs"
	"github.com/cloudcatalog/itemsvc/internal/pubsub"
)

const sourceAttribute = "http-function"

// Service handles publish requests with at-most-once semantics per
// request_id within the lifetime of the dedup store.
type Service struct {
	dedup   dedup.Store
	pub     pubsub.Publisher
	topic   string
	timeout time.Duration
}

// NewService creates the publish service. timeout bounds the wait for the
// endpoint acknowledgment; zero means no bound beyond the request context.
func NewService(d dedup.Store, p pubsub.Publisher, topic string, timeout time.Duration) *Service {
	return &Service{dedup: d, pub: p, topic: topic, timeout: timeout}
}

// Result is the outcome of a publish request. Duplicate means the token was
// already processed and no message was sent; MessageID is set otherwise.
type Result struct {
	MessageID string
	Duplicate bool
}

// HandlePublish validates the request, reserves the idempotency token, and
// publishes the message, blocking until the endpoint assigns a message id.
// The token is reserved atomically before publishing; a failed publish
// releases it so the caller's retry can succeed.
func (s *Service) HandlePublish(ctx context.Context, req model.PublishRequest) (Result, error) {
	if req.RequestID == "" {
		return Result{}, apperr.New(apperr.InvalidPayload, "request_id is required")
	}
	if len(req.Message) == 0 || !json.Valid(req.Message) {
		return Result{}, apperr.New(apperr.InvalidPayload, "message is required")
	}

	inserted, err := s.dedup.Add(ctx, req.RequestID)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.PublishFailure, err, "record idempotency token")
	}
	if !inserted {
		obs.Logger.Infow("publish_duplicate_suppressed", "request_id", req.RequestID)
		return Result{Duplicate: true}, nil
	}

	msg := broker.NewMessage()
	msg.ID = uuid.NewString()
	msg.Header.Set(pubsub.HeaderRequestID, req.RequestID)
	msg.Header.Set(pubsub.HeaderSource, sourceAttribute)
	msg.Body = append([]byte(nil), req.Message...)

	pctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	id, err := s.pub.Publish(pctx, s.topic, msg)
	if err != nil {
		// a failed publish must not leave a dedup record
		if rerr := s.dedup.Remove(context.WithoutCancel(ctx), req.RequestID); rerr != nil {
			obs.Logger.Errorw("dedup_release_failed", "request_id", req.RequestID, "error", rerr)
		}
		obs.Logger.Errorw("publish_failed", "request_id", req.RequestID, "topic", s.topic, "error", err)
		return Result{}, apperr.Wrap(apperr.PublishFailure, err, "publish message")
	}

	obs.Logger.Infow("message_published",
		"request_id", req.RequestID,
		"message_id", id,
		"topic", s.topic,
	)
	return Result{MessageID: id}, nil
}
