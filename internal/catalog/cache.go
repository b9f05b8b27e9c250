package catalog

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache provides Redis-backed caching for the catalog read path so a session
// start does not hammer Postgres for the same six categories.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ReadCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func key(prefix string, ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return prefix + ":" + strings.Join(sorted, ",")
}

func (c *Cache) GetCategories(ctx context.Context, ids []string) ([]Category, error) {
	data, err := c.client.Get(ctx, key("catalog:categories", ids)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var cats []Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Cache) SetCategories(ctx context.Context, ids []string, cats []Category) error {
	data, err := json.Marshal(cats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key("catalog:categories", ids), data, c.ttl).Err()
}

func (c *Cache) GetQuestions(ctx context.Context, categoryIDs []string) ([]Question, error) {
	data, err := c.client.Get(ctx, key("catalog:questions", categoryIDs)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (c *Cache) SetQuestions(ctx context.Context, categoryIDs []string, qs []Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key("catalog:questions", categoryIDs), data, c.ttl).Err()
}
