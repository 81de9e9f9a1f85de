package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Admin         AdminConfig
	AI            AIConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.AI.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JOBTRACKER_APP_ENV" required:"true"`
	Port         string `envconfig:"JOBTRACKER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"JOBTRACKER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JOBTRACKER_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"JOBTRACKER_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	return splitList(a.CORSOrigins)
}

type DBConfig struct {
	DSN    string `envconfig:"JOBTRACKER_DB_DSN"`
	Driver string `envconfig:"JOBTRACKER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JOBTRACKER_DB_HOST"`
	LegacyPort     int    `envconfig:"JOBTRACKER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JOBTRACKER_DB_USER"`
	LegacyPassword string `envconfig:"JOBTRACKER_DB_PASSWORD"`
	LegacyName     string `envconfig:"JOBTRACKER_DB_NAME"`
	LegacySSLMode  string `envconfig:"JOBTRACKER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JOBTRACKER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JOBTRACKER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JOBTRACKER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JOBTRACKER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"JOBTRACKER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"JOBTRACKER_REDIS_ADDR"`
	Password     string        `envconfig:"JOBTRACKER_REDIS_PASSWORD"`
	DB           int           `envconfig:"JOBTRACKER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JOBTRACKER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JOBTRACKER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JOBTRACKER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JOBTRACKER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JOBTRACKER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"JOBTRACKER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"JOBTRACKER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"JOBTRACKER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"JOBTRACKER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"JOBTRACKER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"JOBTRACKER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"JOBTRACKER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"JOBTRACKER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"JOBTRACKER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"JOBTRACKER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"JOBTRACKER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"JOBTRACKER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"JOBTRACKER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"JOBTRACKER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"JOBTRACKER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"JOBTRACKER_AUTO_MIGRATE" default:"false"`
}

type AdminConfig struct {
	Emails                string `envconfig:"JOBTRACKER_ADMIN_EMAILS" default:"admin@jobtracker.com,admin2@jobtracker.com"`
	AllowSelfDeactivation bool   `envconfig:"JOBTRACKER_ADMIN_ALLOW_SELF_DEACTIVATION" default:"false"`
}

// EmailAllowlist returns the lower-cased admin email allowlist.
func (a AdminConfig) EmailAllowlist() []string {
	items := splitList(a.Emails)
	for i, item := range items {
		items[i] = strings.ToLower(item)
	}
	return items
}

type AIConfig struct {
	Provider       string        `envconfig:"JOBTRACKER_AI_PROVIDER" default:"openai"`
	APIKey         string        `envconfig:"JOBTRACKER_AI_API_KEY"`
	BaseURL        string        `envconfig:"JOBTRACKER_AI_BASE_URL" default:"https://api.openai.com/v1"`
	Model          string        `envconfig:"JOBTRACKER_AI_MODEL" default:"gpt-4"`
	RequestTimeout time.Duration `envconfig:"JOBTRACKER_AI_REQUEST_TIMEOUT" default:"0s"`
}

func (a AIConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.Provider)) {
	case AIProviderOpenAI, AIProviderGoogle:
		return nil
	default:
		return fmt.Errorf("%s must be one of %s, %s", EnvAIProvider, AIProviderOpenAI, AIProviderGoogle)
	}
}

type GCPConfig struct {
	ProjectID       string `envconfig:"JOBTRACKER_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"JOBTRACKER_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	AuditTopic string `envconfig:"JOBTRACKER_PUBSUB_AUDIT_TOPIC" default:"jt-audit-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"JOBTRACKER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"JOBTRACKER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"JOBTRACKER_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
