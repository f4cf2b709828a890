package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ストレージドライバの種類です。
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Payroll   PayrollConfig   `yaml:"payroll"`
	Timesheet TimesheetConfig `yaml:"timesheet"`
}

// ServerConfig は gRPC / HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	HTTPAddr           string        `yaml:"http_addr"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// StorageConfig は永続化先の選択です。
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	// ApplicationName は pg_stat_activity に表示される接続名です。
	ApplicationName string `yaml:"application_name"`
	// TxIsolation は読み書きトランザクションの分離レベルです。空なら DB の既定値です。
	TxIsolation string `yaml:"tx_isolation"`
	// TxRetries は直列化失敗時に読み書きトランザクションをやり直す回数です。
	TxRetries int `yaml:"tx_retries"`
}

// RedisConfig はタイマーセッション保存先の設定です。Addr が空なら利用しません。
type RedisConfig struct {
	Addr          string        `yaml:"addr"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	KeyPrefix     string        `yaml:"key_prefix"`
	SessionTTL    time.Duration `yaml:"-"`
	SessionTTLRaw string        `yaml:"session_ttl"`
}

// Enabled は Redis を利用するかを返します。
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// AuthConfig は REST API のトークン検証設定です。JWTSecret が空なら検証しません。
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// RateLimitConfig は REST API のレート制限です。書式は "100-M" (100 回/分) です。
type RateLimitConfig struct {
	Rate string `yaml:"rate"`
}

// PayrollConfig は給与設定が未保存のときに使う既定値です。
// 率は省略時のみ組み込みの既定値を使い、明示した 0 はそのまま使います。それ以外の項目は 0 を省略とみなします。
type PayrollConfig struct {
	OvertimeRate         *float64 `yaml:"overtime_rate"`
	TaxRate              *float64 `yaml:"tax_rate"`
	PayDay               int      `yaml:"pay_day"`
	Currency             string   `yaml:"currency"`
	StandardMonthlyHours float64  `yaml:"standard_monthly_hours"`
	// Organization は給与明細 PDF の見出しに使う組織名です。
	Organization string `yaml:"organization"`
}

// TimesheetConfig はタイムシート生成の設定です。
type TimesheetConfig struct {
	DuplicatePolicy string `yaml:"duplicate_policy"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnvOverrides(os.Getenv)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides は秘匿値を環境変数で上書きします。.env は呼び出し側で読み込み済みの前提です。
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	shutdown, err := parseDurationAllowEmpty(c.Server.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if shutdown == 0 {
		shutdown = 10 * time.Second
	}
	c.Server.ShutdownTimeout = shutdown

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = StorageMemory
	case StorageMemory:
	case StoragePostgres:
		db := &c.Database
		if err := db.validateAndNormalize(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: storage.driver %q is not supported", c.Storage.Driver)
	}

	if err := c.Redis.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.RateLimit.validate(); err != nil {
		return err
	}

	if err := c.Payroll.validate(); err != nil {
		return err
	}

	c.Timesheet.DuplicatePolicy = strings.ToLower(strings.TrimSpace(c.Timesheet.DuplicatePolicy))
	switch c.Timesheet.DuplicatePolicy {
	case "":
		c.Timesheet.DuplicatePolicy = "append"
	case "append", "upsert":
	default:
		return fmt.Errorf("config: timesheet.duplicate_policy %q is not supported", c.Timesheet.DuplicatePolicy)
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

	if d.ApplicationName == "" {
		d.ApplicationName = "hr-payroll"
	}
	d.TxIsolation = strings.ToLower(strings.TrimSpace(d.TxIsolation))
	switch d.TxIsolation {
	case "", "read_committed", "repeatable_read", "serializable":
	default:
		return fmt.Errorf("config: database.tx_isolation %q is not supported", d.TxIsolation)
	}
	if d.TxRetries < 0 {
		return fmt.Errorf("config: database.tx_retries must not be negative")
	}

	return nil
}

func (r *RedisConfig) validateAndNormalize() error {
	if r.DB < 0 {
		return fmt.Errorf("config: redis.db must not be negative")
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = "timer:session:"
	}
	ttl, err := parseDurationAllowEmpty(r.SessionTTLRaw)
	if err != nil {
		return fmt.Errorf("config: redis.session_ttl: %w", err)
	}
	r.SessionTTL = ttl
	return nil
}

func (r RateLimitConfig) validate() error {
	if r.Rate == "" {
		return nil
	}
	parts := strings.Split(r.Rate, "-")
	if len(parts) != 2 {
		return fmt.Errorf("config: rate_limit.rate %q must look like 100-M", r.Rate)
	}
	if n, err := strconv.Atoi(parts[0]); err != nil || n <= 0 {
		return fmt.Errorf("config: rate_limit.rate %q must start with a positive count", r.Rate)
	}
	switch strings.ToUpper(parts[1]) {
	case "S", "M", "H", "D":
		return nil
	default:
		return fmt.Errorf("config: rate_limit.rate %q has unknown period", r.Rate)
	}
}

func (p PayrollConfig) validate() error {
	if p.OvertimeRate != nil && *p.OvertimeRate < 0 {
		return fmt.Errorf("config: payroll.overtime_rate must not be negative")
	}
	if p.TaxRate != nil && (*p.TaxRate < 0 || *p.TaxRate > 100) {
		return fmt.Errorf("config: payroll.tax_rate must be between 0 and 100")
	}
	if p.PayDay < 0 || p.PayDay > 31 {
		return fmt.Errorf("config: payroll.pay_day must be between 1 and 31")
	}
	if p.StandardMonthlyHours < 0 {
		return fmt.Errorf("config: payroll.standard_monthly_hours must not be negative")
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

// DSN は pgx 用の接続文字列を返します。認証情報は URL エンコードします。
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
