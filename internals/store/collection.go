// file: internals/store/collection.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// InvalidError membungkus error validasi di boundary store.
// errors.Is(err, ErrInvalid) == true, errors.As(err, &validator.ValidationErrors{}) tetap jalan.
type InvalidError struct{ Cause error }

func (e *InvalidError) Error() string        { return "invalid document: " + e.Cause.Error() }
func (e *InvalidError) Unwrap() error        { return e.Cause }
func (e *InvalidError) Is(target error) bool { return target == ErrInvalid }

// Upgrader memigrasikan bentuk lama dokumen (nama field legacy, tipe beda) saat dibaca.
// Angka di doc berupa json.Number, bukan float64.
type Upgrader func(doc map[string]any)

// upgradeAPI: angka tetap json.Number supaya nominal besar tidak kehilangan presisi.
var upgradeAPI = sonic.Config{UseNumber: true}.Froze()

type Option[T any] func(*Collection[T])

func WithUpgrader[T any](u Upgrader) Option[T] {
	return func(c *Collection[T]) { c.upgrade = u }
}

// WithNormalizer dipanggil sebelum validasi di setiap write.
func WithNormalizer[T any](fn func(*T)) Option[T] {
	return func(c *Collection[T]) { c.normalize = fn }
}

var defaultValidator = validator.New()

// Collection: akses bertipe di atas Backend yang schemaless.
type Collection[T any] struct {
	name      string
	backend   Backend
	validate  *validator.Validate
	upgrade   Upgrader
	normalize func(*T)
}

func NewCollection[T any](b Backend, name string, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{name: name, backend: b, validate: defaultValidator}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) Get(ctx context.Context, tenant, id string) (T, error) {
	var out T
	raw, err := c.backend.Get(ctx, c.name, tenant, id)
	if err != nil {
		return out, err
	}
	return c.decode(raw)
}

func (c *Collection[T]) Insert(ctx context.Context, tenant, id string, doc *T) error {
	body, err := c.encode(doc)
	if err != nil {
		return err
	}
	return c.backend.Insert(ctx, c.name, tenant, id, body)
}

func (c *Collection[T]) Put(ctx context.Context, tenant, id string, doc *T) error {
	body, err := c.encode(doc)
	if err != nil {
		return err
	}
	return c.backend.Put(ctx, c.name, tenant, id, body)
}

func (c *Collection[T]) Find(ctx context.Context, tenant string, q Query) ([]T, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	raws, total, err := c.backend.Find(ctx, c.name, tenant, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := c.decode(raw)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

// FindAll: tanpa paging, dipakai untuk export & validasi unik.
func (c *Collection[T]) FindAll(ctx context.Context, tenant string, filters ...Filter) ([]T, error) {
	list, _, err := c.Find(ctx, tenant, Query{Filters: filters})
	return list, err
}

func (c *Collection[T]) Delete(ctx context.Context, tenant, id string) error {
	return c.backend.Delete(ctx, c.name, tenant, id)
}

/* =======================================================================
   Codec
======================================================================= */

func (c *Collection[T]) encode(doc *T) ([]byte, error) {
	if doc == nil {
		return nil, &InvalidError{Cause: errors.New("nil document")}
	}
	if c.normalize != nil {
		c.normalize(doc)
	}
	if c.validate != nil {
		if err := c.validate.Struct(doc); err != nil {
			return nil, &InvalidError{Cause: err}
		}
	}
	body, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return body, nil
}

func (c *Collection[T]) decode(raw []byte) (T, error) {
	var out T
	if c.upgrade != nil {
		var m map[string]any
		if err := upgradeAPI.Unmarshal(raw, &m); err != nil {
			return out, fmt.Errorf("decode %s: %w", c.name, err)
		}
		c.upgrade(m)
		b, err := upgradeAPI.Marshal(m)
		if err != nil {
			return out, fmt.Errorf("decode %s: %w", c.name, err)
		}
		raw = b
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", c.name, err)
	}
	return out, nil
}
