package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
	Authz    AuthzConfig    `yaml:"authz"`
}

// ServerConfig は gRPC サーバーとメトリクス公開に関する設定です。
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr" env:"HR_SERVER_LISTEN_ADDR"`
	MetricsAddr string `yaml:"metrics_addr" env:"HR_SERVER_METRICS_ADDR"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" env:"HR_DATABASE_HOST"`
	Port               int           `yaml:"port" env:"HR_DATABASE_PORT"`
	User               string        `yaml:"user" env:"HR_DATABASE_USER"`
	Password           string        `yaml:"password" env:"HR_DATABASE_PASSWORD"`
	Name               string        `yaml:"name" env:"HR_DATABASE_NAME"`
	SSLMode            string        `yaml:"ssl_mode" env:"HR_DATABASE_SSL_MODE"`
	MaxOpenConns       int           `yaml:"max_open_conns" env:"HR_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns       int           `yaml:"max_idle_conns" env:"HR_DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime" env:"HR_DATABASE_CONN_MAX_LIFETIME"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time" env:"HR_DATABASE_CONN_MAX_IDLE_TIME"`
}

// CacheDriver はダッシュボード集計キャッシュの保存先です。
type CacheDriver string

const (
	CacheDriverMemory CacheDriver = "memory"
	CacheDriverRedis  CacheDriver = "redis"
)

// CacheConfig は集計キャッシュに関する設定です。
type CacheConfig struct {
	Driver        CacheDriver `yaml:"driver" env:"HR_CACHE_DRIVER"`
	Size          int         `yaml:"size" env:"HR_CACHE_SIZE"`
	RedisAddr     string      `yaml:"redis_addr" env:"HR_CACHE_REDIS_ADDR"`
	RedisPassword string      `yaml:"redis_password" env:"HR_CACHE_REDIS_PASSWORD"`
	RedisDB       int         `yaml:"redis_db" env:"HR_CACHE_REDIS_DB"`
	KeyPrefix     string      `yaml:"key_prefix" env:"HR_CACHE_KEY_PREFIX"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string `yaml:"level" env:"HR_LOG_LEVEL"`
	Format string `yaml:"format" env:"HR_LOG_FORMAT"`
}

// AuthzConfig は認可の動作モードです。
type AuthzConfig struct {
	Mode string `yaml:"mode" env:"HR_AUTHZ_MODE"`
}

const (
	defaultCacheSize = 256
	defaultKeyPrefix = "hr:"
)

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Cache.validateAndNormalize(); err != nil {
		return err
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch strings.ToLower(c.Log.Format) {
	case "":
		c.Log.Format = "text"
	case "text", "json":
		c.Log.Format = strings.ToLower(c.Log.Format)
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}

	switch c.Authz.Mode {
	case "":
		c.Authz.Mode = "enforce"
	case "enforce", "disabled":
	default:
		return fmt.Errorf("config: authz.mode must be enforce or disabled, got %q", c.Authz.Mode)
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (c *CacheConfig) validateAndNormalize() error {
	if c.Driver == "" {
		c.Driver = CacheDriverMemory
	}
	switch c.Driver {
	case CacheDriverMemory:
	case CacheDriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: cache.redis_addr is required when cache.driver is redis")
		}
	default:
		return fmt.Errorf("config: cache.driver must be memory or redis, got %q", c.Driver)
	}
	if c.Size <= 0 {
		c.Size = defaultCacheSize
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
