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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Platform     PlatformConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Scheduler    SchedulerConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAYFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"PAYFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PAYFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAYFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PAYFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAYFLOW_DB_DSN"`
	Driver string `envconfig:"PAYFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PAYFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"PAYFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PAYFLOW_DB_USER"`
	LegacyPassword string `envconfig:"PAYFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"PAYFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"PAYFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAYFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAYFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAYFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAYFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAYFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PAYFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"PAYFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAYFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAYFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAYFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAYFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAYFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAYFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PAYFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PAYFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PAYFLOW_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// PlatformConfig seeds the durable platform row on first boot. Later changes
// go through the owner-gated admin operations, not the environment.
type PlatformConfig struct {
	OwnerAccount   string `envconfig:"PAYFLOW_PLATFORM_OWNER" required:"true"`
	FeeAccount     string `envconfig:"PAYFLOW_PLATFORM_FEE_ACCOUNT" required:"true"`
	CustodyAccount string `envconfig:"PAYFLOW_PLATFORM_CUSTODY_ACCOUNT" required:"true"`
	FeeRateBps     int64  `envconfig:"PAYFLOW_PLATFORM_FEE_RATE_BPS" default:"25"`
	MinAmountCents int64  `envconfig:"PAYFLOW_PLATFORM_MIN_AMOUNT_CENTS" default:"1000"`
	MaxAmountCents int64  `envconfig:"PAYFLOW_PLATFORM_MAX_AMOUNT_CENTS" default:"100000000000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PAYFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PAYFLOW_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PAYFLOW_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PAYFLOW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PAYFLOW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"PAYFLOW_PUBSUB_DOMAIN_TOPIC" default:"payflow-domain-events"`
	DomainSubscription string `envconfig:"PAYFLOW_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PAYFLOW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PAYFLOW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PAYFLOW_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RateLimitConfig struct {
	Window        time.Duration `envconfig:"PAYFLOW_RATE_LIMIT_WINDOW" default:"1m"`
	MutationLimit int           `envconfig:"PAYFLOW_RATE_LIMIT_MUTATIONS" default:"120"`
}

type SchedulerConfig struct {
	TickInterval time.Duration `envconfig:"PAYFLOW_SCHEDULER_TICK_INTERVAL" default:"30s"`
	SweepBatch   int           `envconfig:"PAYFLOW_SCHEDULER_SWEEP_BATCH" default:"100"`
	ExecuteBatch int           `envconfig:"PAYFLOW_SCHEDULER_EXECUTE_BATCH" default:"50"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
