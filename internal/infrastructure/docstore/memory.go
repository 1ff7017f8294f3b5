package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local
// development, in the same spirit as the other mock infrastructure
// services. Scan order matches the Postgres adapter: newest write
// first, insertion sequence as the tiebreak.
type MemoryStore struct {
	mu   sync.RWMutex
	seq  int64
	data map[string]map[string]*memDoc

	// FailQuery, when set, lets tests inject query failures (for
	// example to force the catalog's degraded scan path).
	FailQuery func(collection string, q Query) error
}

type memDoc struct {
	seq    int64
	raw    json.RawMessage
	fields map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]*memDoc)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, dest interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(doc.raw, dest)
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, value interface{}) error {
	raw, fields, err := encode(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[collection] == nil {
		s.data[collection] = make(map[string]*memDoc)
	}
	seq := s.seq
	if existing, ok := s.data[collection][id]; ok {
		seq = existing.seq // replace keeps the original scan position
	} else {
		s.seq++
		seq = s.seq
	}
	s.data[collection][id] = &memDoc{seq: seq, raw: raw, fields: fields}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		doc.fields[k] = normalize(v)
	}
	raw, err := json.Marshal(doc.fields)
	if err != nil {
		return err
	}
	doc.raw = raw
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[collection], id)
	return nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, value interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, value); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if s.FailQuery != nil {
		if err := s.FailQuery(collection, q); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type row struct {
		id  string
		doc *memDoc
	}
	var rows []row
	for id, doc := range s.data[collection] {
		if matches(doc.fields, q.Predicates) {
			rows = append(rows, row{id: id, doc: doc})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].doc.seq > rows[j].doc.seq
	})

	start := 0
	if q.Cursor != nil {
		start = len(rows) // cursor id filtered out mid-scan: resume past the end
		for i, r := range rows {
			if r.id == q.Cursor.LastID {
				start = i + 1
				break
			}
		}
	}

	var out []Document
	for _, r := range rows[min(start, len(rows)):] {
		out = append(out, Document{ID: r.id, Data: r.doc.raw})
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	current := int64(0)
	if v, ok := doc.fields[field].(float64); ok {
		current = int64(v)
	}
	doc.fields[field] = float64(current + delta)
	raw, err := json.Marshal(doc.fields)
	if err != nil {
		return err
	}
	doc.raw = raw
	return nil
}

func encode(value interface{}) (json.RawMessage, map[string]interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	return raw, fields, nil
}

// normalize round-trips a patch value through JSON so stored fields
// stay in decoded-JSON form (float64 numbers, []interface{} arrays).
func normalize(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func matches(fields map[string]interface{}, preds []Predicate) bool {
	for _, p := range preds {
		switch p.Op {
		case OpEqual:
			if fmt.Sprintf("%v", fields[p.Field]) != fmt.Sprintf("%v", p.Value) {
				return false
			}
		case OpArrayContainsAny:
			want, ok := p.Value.([]string)
			if !ok {
				return false
			}
			have, ok := fields[p.Field].([]interface{})
			if !ok {
				return false
			}
			if !intersects(have, want) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func intersects(have []interface{}, want []string) bool {
	for _, h := range have {
		hs, ok := h.(string)
		if !ok {
			continue
		}
		for _, w := range want {
			if hs == w {
				return true
			}
		}
	}
	return false
}
