// Package redis は Redis を使った集計キャッシュです。
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client は Cache が利用する go-redis のコマンドです。*goredis.Client が満たします。
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// Options は接続設定です。
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Cache は report.Cache の Redis 実装です。
type Cache struct {
	client Client
	prefix string
}

// New は Cache を生成します。
func New(client Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Dial は Redis に接続し、疎通を確認してから Cache を返します。
func Dial(ctx context.Context, opts Options, prefix string) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return New(client, prefix), nil
}

// Get はキーの値を返します。キーが存在しない場合は found が false です。
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Set は値を ttl 付きで保存します。
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close は接続を閉じます。
func (c *Cache) Close() error {
	return c.client.Close()
}
