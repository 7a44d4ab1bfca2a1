// Package memory はプロセス内 LRU を使った集計キャッシュです。
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MaxTTL は保持期間の上限です。これより長い ttl は MaxTTL に丸められます。
const MaxTTL = 30 * time.Minute

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache は report.Cache のメモリ実装です。
type Cache struct {
	prefix string
	lru    *expirable.LRU[string, entry]
	now    func() time.Time
}

// New は最大 size 件を保持する Cache を生成します。
func New(size int, prefix string) *Cache {
	if size <= 0 {
		size = 1
	}
	return &Cache{
		prefix: prefix,
		lru:    expirable.NewLRU[string, entry](size, nil, MaxTTL),
		now:    time.Now,
	}
}

// Get はキーの値を返します。期限切れの値は削除され、見つからなかった扱いになります。
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	k := c.prefix + key
	e, ok := c.lru.Get(k)
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.lru.Remove(k)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set は値を ttl の間保持します。ttl が 0 以下の場合は保存しません。
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	c.lru.Add(c.prefix+key, entry{value: stored, expiresAt: c.now().Add(ttl)})
	return nil
}

// Len は保持中の件数を返します。
func (c *Cache) Len() int {
	return c.lru.Len()
}
