package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Business     BusinessConfig
	Manifest     ManifestConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if _, locErr := c.Business.Location(); locErr != nil {
		err = multierr.Append(err, locErr)
	}
	if c.Manifest.MaxRangeDays <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvManifestMaxRangeDays))
	}
	if c.Manifest.CacheTTL < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvManifestCacheTTL))
	}
	if c.FeatureFlags.UseSQLite && strings.TrimSpace(c.DB.SQLitePath) == "" {
		err = multierr.Append(err, fmt.Errorf("%s is required when %s is set", EnvDBSQLitePath, EnvUseSQLite))
	}
	return err
}

type AppConfig struct {
	Env          string   `envconfig:"CRAWLOPS_APP_ENV" required:"true"`
	Port         string   `envconfig:"CRAWLOPS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CRAWLOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CRAWLOPS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CRAWLOPS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"CRAWLOPS_DB_DSN"`
	SQLitePath string `envconfig:"CRAWLOPS_DB_SQLITE_PATH" default:"file::memory:?cache=shared"`

	LegacyHost     string `envconfig:"CRAWLOPS_DB_HOST"`
	LegacyPort     int    `envconfig:"CRAWLOPS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRAWLOPS_DB_USER"`
	LegacyPassword string `envconfig:"CRAWLOPS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRAWLOPS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRAWLOPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRAWLOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRAWLOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRAWLOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRAWLOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRAWLOPS_REDIS_URL"`
	Address      string        `envconfig:"CRAWLOPS_REDIS_ADDR"`
	Password     string        `envconfig:"CRAWLOPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRAWLOPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRAWLOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRAWLOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRAWLOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRAWLOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRAWLOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// BusinessConfig holds the operating zone every calendar date and timeslot is
// rendered in.
type BusinessConfig struct {
	Timezone string `envconfig:"CRAWLOPS_BUSINESS_TIMEZONE" default:"Europe/Warsaw"`
}

// Location loads the configured business zone.
func (b BusinessConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(b.Timezone)
	if name == "" {
		return nil, fmt.Errorf("%s is required", EnvBusinessTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s=%q: %w", EnvBusinessTimezone, name, err)
	}
	return loc, nil
}

type ManifestConfig struct {
	CacheTTL     time.Duration `envconfig:"CRAWLOPS_MANIFEST_CACHE_TTL" default:"2m"`
	MaxRangeDays int           `envconfig:"CRAWLOPS_MANIFEST_MAX_RANGE_DAYS" default:"31"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"CRAWLOPS_USE_SQLITE" default:"false"`
	ManifestCache bool `envconfig:"CRAWLOPS_FEATURE_MANIFEST_CACHE" default:"true"`
	AutoMigrate   bool `envconfig:"CRAWLOPS_FEATURE_AUTO_MIGRATE" default:"false"`
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
