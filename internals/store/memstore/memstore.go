// Package memstore is an in-process store.Backend used by tests and local runs.
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"edudesk_backend/internals/store"
)

type key struct{ collection, tenant, id string }

type entry struct {
	body []byte
	seq  int64
}

type Store struct {
	mu   sync.RWMutex
	docs map[key]entry
	seq  int64

	// FailPut, jika di-set, dipanggil sebelum setiap Put/Insert (injeksi error di tes).
	FailPut func(collection, tenant, id string) error
}

func New() *Store {
	return &Store{docs: make(map[key]entry)}
}

var _ store.Backend = (*Store)(nil)

func (s *Store) Get(_ context.Context, collection, tenant, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[key{collection, tenant, id}]
	if !ok {
		return nil, fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrNotFound)
	}
	return append([]byte(nil), e.body...), nil
}

func (s *Store) Insert(_ context.Context, collection, tenant, id string, body []byte) error {
	if s.FailPut != nil {
		if err := s.FailPut(collection, tenant, id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{collection, tenant, id}
	if _, ok := s.docs[k]; ok {
		return fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrDuplicate)
	}
	s.seq++
	s.docs[k] = entry{body: append([]byte(nil), body...), seq: s.seq}
	return nil
}

func (s *Store) Put(_ context.Context, collection, tenant, id string, body []byte) error {
	if s.FailPut != nil {
		if err := s.FailPut(collection, tenant, id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{collection, tenant, id}
	seq := s.docs[k].seq
	if seq == 0 {
		s.seq++
		seq = s.seq
	}
	s.docs[k] = entry{body: append([]byte(nil), body...), seq: seq}
	return nil
}

func (s *Store) Delete(_ context.Context, collection, tenant, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{collection, tenant, id}
	if _, ok := s.docs[k]; !ok {
		return fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrNotFound)
	}
	delete(s.docs, k)
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

type row struct {
	body []byte
	doc  map[string]any
	seq  int64
}

func (s *Store) Find(_ context.Context, collection, tenant string, q store.Query) ([][]byte, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	var rows []row
	for k, e := range s.docs {
		if k.collection != collection || k.tenant != tenant {
			continue
		}
		var doc map[string]any
		if err := sonic.Unmarshal(e.body, &doc); err != nil {
			s.mu.RUnlock()
			return nil, 0, err
		}
		if matches(doc, filters) {
			rows = append(rows, row{body: e.body, doc: doc, seq: e.seq})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if q.SortBy != "" {
			a, _ := lookup(rows[i].doc, q.SortBy)
			b, _ := lookup(rows[j].doc, q.SortBy)
			if c := compare(a, b); c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return rows[i].seq < rows[j].seq
	})

	total := int64(len(rows))
	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	out := make([][]byte, 0, len(rows))
	for _, r := range rows {
		out = append(out, append([]byte(nil), r.body...))
	}
	return out, total, nil
}

// normalizeFilters menyamakan tipe nilai filter dengan hasil decode JSON (angka -> float64, dst).
func normalizeFilters(in []store.Filter) ([]store.Filter, error) {
	out := make([]store.Filter, 0, len(in))
	for _, f := range in {
		b, err := sonic.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		var v any
		if err := sonic.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		out = append(out, store.Filter{Field: f.Field, Value: v})
	}
	return out, nil
}

func matches(doc map[string]any, filters []store.Filter) bool {
	for _, f := range filters {
		v, ok := lookup(doc, f.Field)
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, part := range store.SplitPath(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func compare(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	// nil / tipe campuran: nil duluan
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	return 0
}
