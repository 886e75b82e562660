package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"interviewbot/internal/model"
)

// TemplateSource loads a template from the system of record
type TemplateSource interface {
	GetByID(ctx context.Context, id string) (*model.Template, error)
}

// TemplateCache is a read-through Redis cache in front of the template repository
type TemplateCache struct {
	client *redis.Client
	source TemplateSource
	ttl    time.Duration
}

// NewTemplateCache creates a template cache. A missing template is never cached.
func NewTemplateCache(client *redis.Client, source TemplateSource, ttl time.Duration) *TemplateCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TemplateCache{client: client, source: source, ttl: ttl}
}

func (c *TemplateCache) key(id string) string {
	return fmt.Sprintf("interview:template:%s", id)
}

// GetByID returns the cached template, loading it from the source on a miss.
// Redis errors degrade to a direct source read.
func (c *TemplateCache) GetByID(ctx context.Context, id string) (*model.Template, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == nil {
		var tpl model.Template
		if err := json.Unmarshal(data, &tpl); err == nil {
			return &tpl, nil
		}
	}

	tpl, err := c.source.GetByID(ctx, id)
	if err != nil || tpl == nil {
		return tpl, err
	}

	if data, err := json.Marshal(tpl); err == nil {
		c.client.Set(ctx, c.key(id), data, c.ttl)
	}
	return tpl, nil
}

// Invalidate drops a cached template
func (c *TemplateCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
