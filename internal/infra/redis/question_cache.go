package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"scisoc-quiz-service/internal/domain"
)

const questionKeyPrefix = "quiz:questions:"

// QuestionLoader fetches raw quiz rows from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, limit int) ([]domain.QuizQuestionRaw, error)
}

// QuestionCache keeps raw quiz rows in Redis as one JSON document per fetch
// limit and falls back to the loader on a miss:
//
//	SET quiz:questions:{limit} [{"id":...,"options":...}, ...] EX ttl
//
// Rows are cached before normalization so every read sees the stored shapes.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context, limit int) ([]domain.QuizQuestionRaw, error) {
	key := c.key(limit)
	if rows, ok := c.cached(ctx, key); ok {
		return rows, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if rows, ok := c.cached(ctx, key); ok {
			return rows, nil
		}

		rows, err := c.loader.LoadQuestions(ctx, limit)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(rows); err == nil {
			// best effort; the loader result is still served on a failed write
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizQuestionRaw), nil
}

// Invalidate removes every cached batch.
func (c *QuestionCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, questionKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *QuestionCache) cached(ctx context.Context, key string) ([]domain.QuizQuestionRaw, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []domain.QuizQuestionRaw
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *QuestionCache) key(limit int) string {
	return questionKeyPrefix + strconv.Itoa(limit)
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
