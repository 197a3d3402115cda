package docstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultMaxAttempts = 5

type record struct {
	fields  map[string]any
	version uint64
}

// Memory is an in-memory Store with per-document versioning. Transactions
// are optimistic: reads record the observed version and commit fails if any
// read document changed since.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]*record
	maxAttempts int
}

// Option configures a Memory store.
type Option func(*Memory)

// WithMaxAttempts sets the transaction retry budget.
func WithMaxAttempts(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		collections: make(map[string]map[string]*record),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) collection(name string) map[string]*record {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]*record)
		m.collections[name] = c
	}
	return c
}

// Create stores fields under a new UUID id.
func (m *Memory) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collection(collection)[id] = &record{fields: cloneFields(fields), version: 1}
	return id, nil
}

// Get returns a copy of the document so callers never alias store memory.
func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(rec.fields)}, nil
}

// Update merges fields into an existing document.
func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	mergeFields(rec, fields)
	return nil
}

// Delete removes the document if present.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

// List returns documents ordered by the OrderBy field, starting after the
// given field value, limited to q.Limit when positive.
func (m *Memory) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	docs := make([]Document, 0)
	for id, rec := range m.collections[collection] {
		if q.OrderBy != "" {
			if _, ok := rec.fields[q.OrderBy]; !ok {
				continue
			}
		}
		docs = append(docs, Document{ID: id, Fields: cloneFields(rec.fields)})
	}
	m.mu.RUnlock()

	if q.OrderBy != "" {
		sort.Slice(docs, func(i, j int) bool {
			vi := fieldString(docs[i].Fields[q.OrderBy])
			vj := fieldString(docs[j].Fields[q.OrderBy])
			if vi == vj {
				return docs[i].ID < docs[j].ID
			}
			return vi < vj
		})
	} else {
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}

	if q.StartAfter != "" && q.OrderBy != "" {
		i := 0
		for i < len(docs) && fieldString(docs[i].Fields[q.OrderBy]) <= q.StartAfter {
			i++
		}
		docs = docs[i:]
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// RunTransaction runs fn with snapshot reads and buffered writes, committing
// only if no read document changed. On conflict the whole function is
// re-executed, up to the attempt budget.
func (m *Memory) RunTransaction(ctx context.Context, fn func(Txn) error) error {
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		txn := &memTxn{store: m, reads: make(map[docKey]uint64)}
		if err := fn(txn); err != nil {
			return err
		}
		committed, err := m.commit(txn)
		if err != nil {
			return err
		}
		if committed {
			return nil
		}
	}
	return ErrTxnConflict
}

type docKey struct {
	collection string
	id         string
}

type txnWrite struct {
	key    docKey
	fields map[string]any
}

type memTxn struct {
	store  *Memory
	reads  map[docKey]uint64 // version observed, 0 = absent
	writes []txnWrite
}

func (t *memTxn) Get(collection, id string) (Document, bool, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	key := docKey{collection, id}
	rec, ok := t.store.collections[collection][id]
	if !ok {
		t.reads[key] = 0
		return Document{}, false, nil
	}
	t.reads[key] = rec.version
	return Document{ID: id, Fields: cloneFields(rec.fields)}, true, nil
}

func (t *memTxn) Update(collection, id string, fields map[string]any) error {
	t.writes = append(t.writes, txnWrite{key: docKey{collection, id}, fields: cloneFields(fields)})
	return nil
}

// commit validates the read set under the write lock and applies buffered
// writes. Returns false on version conflict so the caller retries.
func (m *Memory) commit(t *memTxn) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, observed := range t.reads {
		var current uint64
		if rec, ok := m.collections[key.collection][key.id]; ok {
			current = rec.version
		}
		if current != observed {
			return false, nil
		}
	}
	for _, w := range t.writes {
		if _, ok := m.collections[w.key.collection][w.key.id]; !ok {
			return false, errors.Wrapf(ErrNotFound, "commit update %s/%s", w.key.collection, w.key.id)
		}
	}
	for _, w := range t.writes {
		mergeFields(m.collections[w.key.collection][w.key.id], w.fields)
	}
	return true, nil
}

func mergeFields(rec *record, fields map[string]any) {
	for k, v := range fields {
		rec.fields[k] = cloneValue(v)
	}
	rec.version++
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneFields(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return val
	}
}

func fieldString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
