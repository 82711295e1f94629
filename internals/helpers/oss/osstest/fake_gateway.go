// Package osstest: Gateway in-memory untuk tes.
package osstest

import (
	"context"
	"io"
	"sort"
	"sync"

	helperOSS "edudesk_backend/internals/helpers/oss"
)

type Object struct {
	Data        []byte
	ContentType string
}

type Gateway struct {
	mu      sync.Mutex
	objects map[string]Object
	Base    string

	// FailPut / FailDelete: injeksi error per key (nil = sukses)
	FailPut    func(key string) error
	FailDelete func(key string) error

	Deleted []string
}

var _ helperOSS.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{objects: map[string]Object{}, Base: "https://cdn.test"}
}

func (g *Gateway) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if key == "" {
		return helperOSS.ErrEmptyKey
	}
	if g.FailPut != nil {
		if err := g.FailPut(key); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[key] = Object{Data: data, ContentType: contentType}
	return nil
}

func (g *Gateway) Delete(_ context.Context, key string) error {
	if key == "" {
		return helperOSS.ErrEmptyKey
	}
	if g.FailDelete != nil {
		if err := g.FailDelete(key); err != nil {
			return err
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.objects, key)
	g.Deleted = append(g.Deleted, key)
	return nil
}

func (g *Gateway) PublicURL(key string) string {
	return helperOSS.JoinPublicURL(g.Base, key)
}

func (g *Gateway) Has(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.objects[key]
	return ok
}

func (g *Gateway) Get(key string) (Object, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.objects[key]
	return o, ok
}

func (g *Gateway) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.objects))
	for k := range g.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
