package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"mymind/config"
	"mymind/models"
)

const (
	trendingKey = "trending_posts"
	trendingTTL = 5 * time.Minute
)

// Trending caches the default trending view in Redis. Every call is
// best-effort; failures are logged and treated as cache misses.
type Trending struct {
	rdb *redis.Client
}

func NewTrending(cfg *config.Config) *Trending {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	return &Trending{rdb: rdb}
}

func (t *Trending) Ping(ctx context.Context) error {
	return t.rdb.Ping(ctx).Err()
}

func (t *Trending) Get(ctx context.Context) ([]models.Post, bool) {
	raw, err := t.rdb.Get(ctx, trendingKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("trending cache get: %v", err)
		}
		return nil, false
	}

	var posts []models.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		log.Printf("trending cache decode: %v", err)
		return nil, false
	}
	return posts, true
}

func (t *Trending) Set(ctx context.Context, posts []models.Post) {
	raw, err := json.Marshal(posts)
	if err != nil {
		log.Printf("trending cache encode: %v", err)
		return
	}
	if err := t.rdb.Set(ctx, trendingKey, raw, trendingTTL).Err(); err != nil {
		log.Printf("trending cache set: %v", err)
	}
}

func (t *Trending) Invalidate(ctx context.Context) {
	if err := t.rdb.Del(ctx, trendingKey).Err(); err != nil {
		log.Printf("trending cache invalidate: %v", err)
	}
}

func (t *Trending) Close() error {
	return t.rdb.Close()
}
