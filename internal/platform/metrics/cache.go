package metrics

import (
	"context"
	"time"
)

// Cache は集計キャッシュの読み書きです。report.Cache と同じメソッドを持ちます。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type instrumentedCache struct {
	next    Cache
	metrics *Metrics
}

// InstrumentCache は next の参照結果 (hit / miss / error) を数えるキャッシュを返します。
func (m *Metrics) InstrumentCache(next Cache) Cache {
	return &instrumentedCache{next: next, metrics: m}
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := c.next.Get(ctx, key)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "hit"
	}
	c.metrics.cacheLookups.WithLabelValues(result).Inc()

	return value, ok, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.next.Set(ctx, key, value, ttl)
}
