package config

const (
	EnvPrefix = "REDRESERVE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "REDRESERVE_APP_ENV"
	EnvPort     = "REDRESERVE_APP_PORT"
	EnvLogLevel = "REDRESERVE_LOG_LEVEL"

	EnvDBDSN    = "REDRESERVE_DB_DSN"
	EnvDBDriver = "REDRESERVE_DB_DRIVER"
	EnvDBHost   = "REDRESERVE_DB_HOST"
	EnvDBPort   = "REDRESERVE_DB_PORT"
	EnvDBUser   = "REDRESERVE_DB_USER"
	EnvDBPass   = "REDRESERVE_DB_PASSWORD"
	EnvDBName   = "REDRESERVE_DB_NAME"

	EnvRedisURL = "REDRESERVE_REDIS_URL"

	EnvJWTSecret              = "REDRESERVE_JWT_SECRET"
	EnvJWTIssuer              = "REDRESERVE_JWT_ISSUER"
	EnvJWTExpMins             = "REDRESERVE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "REDRESERVE_REFRESH_TOKEN_TTL_MINUTES"

	EnvGroqModel = "REDRESERVE_GROQ_MODEL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
