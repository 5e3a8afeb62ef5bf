package config

const (
	EnvPrefix = "COURIERDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "COURIERDESK_APP_ENV"
	EnvPort     = "COURIERDESK_APP_PORT"
	EnvLogLevel = "COURIERDESK_LOG_LEVEL"

	EnvDBDSN  = "COURIERDESK_DB_DSN"
	EnvDBHost = "COURIERDESK_DB_HOST"
	EnvDBUser = "COURIERDESK_DB_USER"
	EnvDBName = "COURIERDESK_DB_NAME"

	EnvRedisURL  = "COURIERDESK_REDIS_URL"
	EnvJWTSecret = "COURIERDESK_JWT_SECRET"
	EnvJWTIssuer = "COURIERDESK_JWT_ISSUER"
	EnvUseSQLite = "COURIERDESK_USE_SQLITE"

	EnvCORSOrigins = "COURIERDESK_CORS_ORIGINS"

	EnvConflictRetries     = "COURIERDESK_FULFILLMENT_CONFLICT_RETRIES"
	EnvNotificationBuffer  = "COURIERDESK_FULFILLMENT_NOTIFICATION_BUFFER"
	EnvNotificationWorkers = "COURIERDESK_FULFILLMENT_NOTIFICATION_WORKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
