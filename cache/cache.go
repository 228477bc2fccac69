// Package cache wraps the optional Redis instance used for catalog
// read-through caching. When REDIS_ADDR is unset every operation is a
// no-op so the API can run without Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	HomeListingKey = "products:home"

	DefaultTTL = 5 * time.Minute
)

var client *redis.Client

func Init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return
	}
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}

func Enabled() bool {
	return client != nil
}

func ProductKey(productID uint) string {
	return fmt.Sprintf("product:%d", productID)
}

func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}

// GetJSON reports whether the key was present and decoded.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	data, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

func Del(ctx context.Context, keys ...string) error {
	if client == nil || len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// InvalidateProducts drops the home listing entry plus the detail entry
// of every product touched by an order, so reduced stock shows up on the
// next read.
func InvalidateProducts(ctx context.Context, productIDs ...uint) error {
	keys := []string{HomeListingKey}
	for _, id := range productIDs {
		keys = append(keys, ProductKey(id))
	}
	return Del(ctx, keys...)
}
