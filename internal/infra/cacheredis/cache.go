package cacheredis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

const keyPrefix = "claimgen:predicate:"

// Cache stores wire-form predicate trees in redis, for deployments running
// several engine replicas against one catalog. Entries carry a TTL purely to
// bound memory; staleness is impossible since published rules never change.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func New(cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{client: client, ttl: cfg.TTL}, nil
}

func (c *Cache) Get(ctx context.Context, key string) (domain.PredicateNode, bool, error) {
	payload, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	node, err := domain.DecodePredicate(payload)
	if err != nil {
		// A corrupt entry is dropped and treated as a miss.
		_ = c.client.Del(ctx, keyPrefix+key).Err()
		return nil, false, nil
	}
	return node, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, node domain.PredicateNode) error {
	payload, err := domain.EncodePredicate(node)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, payload, c.ttl).Err()
}

func (c *Cache) Close() error { return c.client.Close() }

var _ usecase.PredicateCache = (*Cache)(nil)
