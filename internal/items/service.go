// Package items implements the item catalog over the document store,
// including the transactional price update.
package items

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/cloudcatalog/itemsvc/internal/apperr"
	"github.com/cloudcatalog/itemsvc/internal/docstore"
	"github.com/cloudcatalog/itemsvc/internal/model"
	"github.com/cloudcatalog/itemsvc/internal/obs"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Service exposes catalog operations over a document store collection.
type Service struct {
	store       docstore.Store
	collection  string
	listDefault int
	listMax     int
}

// Option configures a Service.
type Option func(*Service)

// WithListLimits overrides the default and maximum page sizes.
func WithListLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.listDefault = def
		}
		if max > 0 {
			s.listMax = max
		}
	}
}

// NewService creates the catalog service over the "items" collection.
func NewService(store docstore.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		collection:  "items",
		listDefault: defaultListLimit,
		listMax:     maxListLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new item, returning the assigned id.
func (s *Service) Create(ctx context.Context, in model.ItemCreate) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", apperr.New(apperr.InvalidPayload, "name is required")
	}
	if in.Price == nil {
		return "", apperr.New(apperr.InvalidPayload, "price is required")
	}
	if !isFinite(*in.Price) {
		return "", apperr.New(apperr.InvalidPayload, "price must be a finite number")
	}
	fields := map[string]any{"name": in.Name, "price": *in.Price}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	id, err := s.store.Create(ctx, s.collection, fields)
	if err != nil {
		return "", errors.Wrap(err, "create item")
	}
	obs.Logger.Infow("item_created", "item_id", id)
	return id, nil
}

// Get returns the item or a NotFound error.
func (s *Service) Get(ctx context.Context, id string) (model.Item, error) {
	doc, err := s.store.Get(ctx, s.collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return model.Item{}, apperr.New(apperr.NotFound, "item not found")
		}
		return model.Item{}, errors.Wrap(err, "get item")
	}
	return itemFromDoc(doc), nil
}

// Update applies a partial update; omitted fields keep their stored value.
func (s *Service) Update(ctx context.Context, id string, in model.ItemUpdate) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apperr.New(apperr.InvalidPayload, "name must not be empty")
	}
	if in.Price != nil && !isFinite(*in.Price) {
		return apperr.New(apperr.InvalidPayload, "price must be a finite number")
	}
	fields := make(map[string]any)
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if len(fields) == 0 {
		// existence check only; an empty update mutates nothing
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return nil
	}
	if err := s.store.Update(ctx, s.collection, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.New(apperr.NotFound, "item not found")
		}
		return errors.Wrap(err, "update item")
	}
	obs.Logger.Infow("item_updated", "item_id", id)
	return nil
}

// Delete removes the item. Deleting an absent item succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.collection, id); err != nil {
		return errors.Wrap(err, "delete item")
	}
	obs.Logger.Infow("item_deleted", "item_id", id)
	return nil
}

// List returns a page of items ordered by name, starting after the given
// name when set.
func (s *Service) List(ctx context.Context, limit int, startAfter string) ([]model.Item, error) {
	if limit <= 0 {
		limit = s.listDefault
	}
	if limit > s.listMax {
		limit = s.listMax
	}
	docs, err := s.store.List(ctx, s.collection, docstore.Query{
		OrderBy:    "name",
		Limit:      limit,
		StartAfter: startAfter,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	out := make([]model.Item, 0, len(docs))
	for _, doc := range docs {
		out = append(out, itemFromDoc(doc))
	}
	return out, nil
}

// UpdatePrice atomically sets the price field of an existing item. The
// existence check and the write happen inside one transaction, so the update
// can never create a document or apply to a concurrently deleted one.
func (s *Service) UpdatePrice(ctx context.Context, id string, price float64) (float64, error) {
	if !isFinite(price) {
		return 0, apperr.New(apperr.InvalidPayload, "price must be a finite number")
	}
	if price < 0 {
		return 0, apperr.New(apperr.InvalidPayload, "price must be >= 0")
	}
	err := s.store.RunTransaction(ctx, func(tx docstore.Txn) error {
		_, ok, err := tx.Get(s.collection, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.NotFound, "item not found")
		}
		return tx.Update(s.collection, id, map[string]any{"price": price})
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return 0, err
		}
		obs.Logger.Errorw("price_update_failed", "item_id", id, "error", err)
		return 0, apperr.Wrap(apperr.TransactionFailure, err, "update price")
	}
	obs.Logger.Infow("price_updated", "item_id", id, "new_price", price)
	return price, nil
}

func itemFromDoc(doc docstore.Document) model.Item {
	item := model.Item{ID: doc.ID}
	if v, ok := doc.Fields["name"].(string); ok {
		item.Name = v
	}
	if v, ok := doc.Fields["description"].(string); ok {
		item.Description = v
	}
	if v, ok := doc.Fields["price"].(float64); ok {
		item.Price = v
	}
	return item
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
