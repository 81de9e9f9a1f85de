package config

const EnvPrefix = "JOBTRACKER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	AIProviderOpenAI = "openai"
	AIProviderGoogle = "googleai"
)

// Environment variable names, exported for tests and tooling.
const (
	EnvAppEnv       = "JOBTRACKER_APP_ENV"
	EnvPort         = "JOBTRACKER_APP_PORT"
	EnvLogLevel     = "JOBTRACKER_LOG_LEVEL"
	EnvCORSOrigins  = "JOBTRACKER_CORS_ALLOWED_ORIGINS"
	EnvDBDSN        = "JOBTRACKER_DB_DSN"
	EnvDBDriver     = "JOBTRACKER_DB_DRIVER"
	EnvDBHost       = "JOBTRACKER_DB_HOST"
	EnvDBPort       = "JOBTRACKER_DB_PORT"
	EnvDBUser       = "JOBTRACKER_DB_USER"
	EnvDBPassword   = "JOBTRACKER_DB_PASSWORD"
	EnvDBName       = "JOBTRACKER_DB_NAME"
	EnvDBSSLMode    = "JOBTRACKER_DB_SSLMODE"
	EnvRedisURL     = "JOBTRACKER_REDIS_URL"
	EnvJWTSecret    = "JOBTRACKER_JWT_SECRET"
	EnvJWTIssuer    = "JOBTRACKER_JWT_ISSUER"
	EnvJWTExpMins   = "JOBTRACKER_JWT_EXPIRATION_MINUTES"
	EnvAutoMigrate  = "JOBTRACKER_AUTO_MIGRATE"
	EnvAdminEmails  = "JOBTRACKER_ADMIN_EMAILS"
	EnvAIProvider   = "JOBTRACKER_AI_PROVIDER"
	EnvAIAPIKey     = "JOBTRACKER_AI_API_KEY"
	EnvAIBaseURL    = "JOBTRACKER_AI_BASE_URL"
	EnvAIModel      = "JOBTRACKER_AI_MODEL"
	EnvAITimeout    = "JOBTRACKER_AI_REQUEST_TIMEOUT"
	EnvGCPProjectID = "JOBTRACKER_GCP_PROJECT_ID"
	EnvAuditTopic   = "JOBTRACKER_PUBSUB_AUDIT_TOPIC"

	EnvRefreshTokenTTLMinutes = "JOBTRACKER_REFRESH_TOKEN_TTL_MINUTES"
	EnvAdminSelfDeactivation  = "JOBTRACKER_ADMIN_ALLOW_SELF_DEACTIVATION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
