package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "astraline"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "ASTRALINE_APP_ENV"
	EnvPort                   = "ASTRALINE_APP_PORT"
	EnvLogLevel               = "ASTRALINE_LOG_LEVEL"
	EnvDBDSN                  = "ASTRALINE_DB_DSN"
	EnvDBHost                 = "ASTRALINE_DB_HOST"
	EnvDBUser                 = "ASTRALINE_DB_USER"
	EnvDBName                 = "ASTRALINE_DB_NAME"
	EnvRedisURL               = "ASTRALINE_REDIS_URL"
	EnvJWTSecret              = "ASTRALINE_JWT_SECRET"
	EnvJWTIssuer              = "ASTRALINE_JWT_ISSUER"
	EnvJWTExpMins             = "ASTRALINE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ASTRALINE_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
