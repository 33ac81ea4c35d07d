package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSink stores each destination as a list of JSON rows under
// Prefix+destination. Rows are staged under a temporary key and renamed over
// the live key, which replaces the list atomically.
type RedisSink struct {
	client redis.Cmdable
	prefix string
}

// NewRedisSink wraps an existing client.
func NewRedisSink(client redis.Cmdable, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

func (r *RedisSink) Name() string { return "redis" }

// Key returns the list key of a destination.
func (r *RedisSink) Key(destination string) string { return r.prefix + destination }

func (r *RedisSink) Publish(ctx context.Context, t Table) error {
	key := r.Key(t.Destination)
	if len(t.Rows) == 0 {
		return r.client.Del(ctx, key).Err()
	}

	values := make([]interface{}, 0, len(t.Rows))
	for _, obj := range t.Objects() {
		b, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		values = append(values, string(b))
	}

	staging := key + ":staging"
	if err := r.client.Del(ctx, staging).Err(); err != nil {
		return fmt.Errorf("clear staging: %w", err)
	}
	if err := r.client.RPush(ctx, staging, values...).Err(); err != nil {
		return fmt.Errorf("stage rows: %w", err)
	}
	if err := r.client.Rename(ctx, staging, key).Err(); err != nil {
		return fmt.Errorf("swap %s: %w", key, err)
	}
	return nil
}

// Close closes the client when the sink owns a *redis.Client.
func (r *RedisSink) Close() error {
	if c, ok := r.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
