package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"interviewbot/internal/model"
)

// SessionCache is the session store: one JSON blob per session id
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSessionCache creates a Redis-backed session store. Every write refreshes the TTL.
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionCache{
		client: client,
		ttl:    ttl,
		tracer: otel.Tracer("interviewbot.internal.cache.session"),
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("interview:session:%s", id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	ctx, span := c.tracer.Start(ctx, "session.save", trace.WithAttributes(attribute.String("session.id", session.ID)))
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("cache: failed to marshal session: %w", err)
	}
	if err := c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("cache: failed to persist session: %w", err)
	}
	return nil
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	ctx, span := c.tracer.Start(ctx, "session.load", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("cache: failed to load session: %w", err)
	}
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("cache: failed to decode session: %w", err)
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
