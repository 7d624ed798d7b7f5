package graph

import (
	"context"
	"sync"

	"github.com/vevey/vevey/internal/server/models"
)

// requestCache memoizes single-record lookups for the duration of one
// request, so a query selecting the same id twice hits the store once.
// It is installed per Execute call and never shared across requests.
type requestCache struct {
	mu    sync.Mutex
	notes map[string]*models.Note
	posts map[string]*models.Post
}

type cacheCtxKey struct{}

func withRequestCache(ctx context.Context) context.Context {
	if _, ok := ctx.Value(cacheCtxKey{}).(*requestCache); ok {
		return ctx
	}
	return context.WithValue(ctx, cacheCtxKey{}, &requestCache{
		notes: make(map[string]*models.Note),
		posts: make(map[string]*models.Post),
	})
}

func cacheFrom(ctx context.Context) *requestCache {
	c, _ := ctx.Value(cacheCtxKey{}).(*requestCache)
	return c
}

func (c *requestCache) note(id string) (*models.Note, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.notes[id]
	return n, ok
}

func (c *requestCache) putNote(id string, n *models.Note) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes[id] = n
}

func (c *requestCache) post(id string) (*models.Post, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.posts[id]
	return p, ok
}

func (c *requestCache) putPost(id string, p *models.Post) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts[id] = p
}
