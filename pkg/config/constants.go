package config

const (
	EnvPrefix = "CRAWLOPS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "CRAWLOPS_APP_ENV"
	EnvPort     = "CRAWLOPS_APP_PORT"
	EnvLogLevel = "CRAWLOPS_LOG_LEVEL"

	EnvDBDSN        = "CRAWLOPS_DB_DSN"
	EnvDBHost       = "CRAWLOPS_DB_HOST"
	EnvDBUser       = "CRAWLOPS_DB_USER"
	EnvDBName       = "CRAWLOPS_DB_NAME"
	EnvDBSQLitePath = "CRAWLOPS_DB_SQLITE_PATH"

	EnvRedisURL = "CRAWLOPS_REDIS_URL"

	EnvBusinessTimezone = "CRAWLOPS_BUSINESS_TIMEZONE"

	EnvManifestCacheTTL     = "CRAWLOPS_MANIFEST_CACHE_TTL"
	EnvManifestMaxRangeDays = "CRAWLOPS_MANIFEST_MAX_RANGE_DAYS"

	EnvUseSQLite = "CRAWLOPS_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
