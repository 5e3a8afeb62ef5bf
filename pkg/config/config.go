package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Fulfillment  FulfillmentConfig
	Metrics      MetricsConfig
	Jobs         JobsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags); err != nil {
		return nil, err
	}
	if err := cfg.Fulfillment.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COURIERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"COURIERDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COURIERDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COURIERDESK_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"COURIERDESK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"COURIERDESK_DB_DSN"`
	SQLitePath string `envconfig:"COURIERDESK_DB_SQLITE_PATH"`

	LegacyHost     string `envconfig:"COURIERDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"COURIERDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COURIERDESK_DB_USER"`
	LegacyPassword string `envconfig:"COURIERDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"COURIERDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"COURIERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COURIERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COURIERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COURIERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COURIERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COURIERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COURIERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"COURIERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"COURIERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COURIERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COURIERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COURIERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COURIERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COURIERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdemTTL      time.Duration `envconfig:"COURIERDESK_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

// JWTConfig only covers verification; tokens are issued by the identity service.
type JWTConfig struct {
	Secret string `envconfig:"COURIERDESK_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"COURIERDESK_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"COURIERDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"COURIERDESK_AUTO_MIGRATE" default:"false"`
}

type FulfillmentConfig struct {
	ConflictRetries     uint64        `envconfig:"COURIERDESK_FULFILLMENT_CONFLICT_RETRIES" default:"3"`
	ConflictBackoff     time.Duration `envconfig:"COURIERDESK_FULFILLMENT_CONFLICT_BACKOFF" default:"50ms"`
	LockTimeout         time.Duration `envconfig:"COURIERDESK_FULFILLMENT_LOCK_TIMEOUT" default:"5s"`
	NotificationBuffer  int           `envconfig:"COURIERDESK_FULFILLMENT_NOTIFICATION_BUFFER" default:"256"`
	NotificationWorkers int           `envconfig:"COURIERDESK_FULFILLMENT_NOTIFICATION_WORKERS" default:"2"`
}

type JobsConfig struct {
	Interval           time.Duration `envconfig:"COURIERDESK_JOBS_INTERVAL" default:"1h"`
	LockTTL            time.Duration `envconfig:"COURIERDESK_JOBS_LOCK_TTL" default:"55m"`
	NotificationMaxAge time.Duration `envconfig:"COURIERDESK_JOBS_NOTIFICATION_MAX_AGE" default:"720h"`
	NotificationBatch  int           `envconfig:"COURIERDESK_JOBS_NOTIFICATION_BATCH" default:"500"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"COURIERDESK_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"COURIERDESK_METRICS_PATH" default:"/metrics"`
}

func (f FulfillmentConfig) validate() error {
	if f.NotificationBuffer <= 0 {
		return fmt.Errorf("%s must be positive", EnvNotificationBuffer)
	}
	if f.NotificationWorkers <= 0 {
		return fmt.Errorf("%s must be positive", EnvNotificationWorkers)
	}
	if f.ConflictBackoff < 0 || f.LockTimeout < 0 {
		return fmt.Errorf("fulfillment durations must not be negative")
	}
	return nil
}

func (db *DBConfig) ensureDSN(flags FeatureFlagsConfig) error {
	if db.DSN != "" || flags.UseSQLite {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
