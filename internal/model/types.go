// Package model defines domain types used by the service.
package model

import "encoding/json"

// Item represents a catalog item document.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// ItemCreate is the payload for creating an item. Name and Price are
// required; Description is optional.
type ItemCreate struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price"`
}

// ItemUpdate is a partial update; nil fields keep their stored value.
type ItemUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// PriceUpdate carries the new price for the transactional price update.
type PriceUpdate struct {
	Price *float64 `json:"price"`
}

// PublishRequest is the inbound payload of the idempotent publish endpoint.
// Message may be any JSON value; RequestID is the caller-supplied
// idempotency token.
type PublishRequest struct {
	Message   json.RawMessage `json:"message"`
	RequestID string          `json:"request_id"`
}
