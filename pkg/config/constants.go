package config

const (
	EnvPrefix = "PHARMACY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "PHARMACY_APP_ENV"
	EnvLogLevel     = "PHARMACY_LOG_LEVEL"
	EnvLogWarnStack = "PHARMACY_LOG_WARN_STACK"

	EnvAPIBaseURL     = "PHARMACY_API_BASE_URL"
	EnvAPITimeout     = "PHARMACY_API_TIMEOUT"
	EnvAPITokenHeader = "PHARMACY_API_TOKEN_HEADER"
	EnvAPIMaxUploadMB = "PHARMACY_API_MAX_UPLOAD_MB"

	EnvSessionTokenFile = "PHARMACY_SESSION_TOKEN_FILE"
	EnvSessionTerminal  = "PHARMACY_SESSION_TERMINAL"
	EnvSessionTTL       = "PHARMACY_SESSION_TTL"

	EnvRedisURL  = "PHARMACY_REDIS_URL"
	EnvRedisAddr = "PHARMACY_REDIS_ADDR"

	EnvCurrencySymbol = "PHARMACY_CURRENCY_SYMBOL"
)
