package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"darkstar-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ResultsChannel is the pub/sub channel finished reports are announced on.
const ResultsChannel = "quiz:results"

// ResultsLoader fetches a channel's last report from a backing store.
type ResultsLoader interface {
	LoadLastResults(ctx context.Context, channelID string) (domain.ResultsReport, error)
}

// ResultsCache stores the last report of each channel as JSON
// (SET quiz:results:{channelID}) and announces it on ResultsChannel. Misses
// fall back to an optional loader.
type ResultsCache struct {
	client *redis.Client
	loader ResultsLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewResultsCache(client *redis.Client, loader ResultsLoader, ttl time.Duration) *ResultsCache {
	return &ResultsCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Publish implements app.ResultsSink.
func (c *ResultsCache) Publish(ctx context.Context, report domain.ResultsReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.key(report.ChannelID), raw, c.ttlWithJitter())
	pipe.Publish(ctx, ResultsChannel, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	return nil
}

func (c *ResultsCache) LastResults(ctx context.Context, channelID string) (domain.ResultsReport, error) {
	if report, ok, err := c.cached(ctx, channelID); err == nil && ok {
		return report, nil
	}
	if c.loader == nil {
		return domain.ResultsReport{}, domain.ErrNoResults
	}

	result, err, _ := c.sf.Do(channelID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if report, ok, err := c.cached(ctx, channelID); err == nil && ok {
			return report, nil
		}
		report, err := c.loader.LoadLastResults(ctx, channelID)
		if err != nil {
			return domain.ResultsReport{}, err
		}
		if raw, err := json.Marshal(report); err == nil {
			_ = c.client.Set(ctx, c.key(channelID), raw, c.ttlWithJitter()).Err()
		}
		return report, nil
	})
	if err != nil {
		return domain.ResultsReport{}, err
	}
	return result.(domain.ResultsReport), nil
}

func (c *ResultsCache) cached(ctx context.Context, channelID string) (domain.ResultsReport, bool, error) {
	raw, err := c.client.Get(ctx, c.key(channelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ResultsReport{}, false, nil
	}
	if err != nil {
		return domain.ResultsReport{}, false, err
	}
	var report domain.ResultsReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return domain.ResultsReport{}, false, err
	}
	return report, true, nil
}

// Subscribe delivers every report announced on ResultsChannel to fn from a
// background goroutine. It returns once the subscription is confirmed; the
// returned stop function ends it.
func (c *ResultsCache) Subscribe(ctx context.Context, fn func(domain.ResultsReport)) (stop func() error, err error) {
	sub := c.client.Subscribe(ctx, ResultsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe results: %w", err)
	}

	go func() {
		for msg := range sub.Channel() {
			var report domain.ResultsReport
			if err := json.Unmarshal([]byte(msg.Payload), &report); err != nil {
				continue
			}
			fn(report)
		}
	}()
	return sub.Close, nil
}

func (c *ResultsCache) key(channelID string) string {
	return "quiz:results:" + channelID
}

func (c *ResultsCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
