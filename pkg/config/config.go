package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gestrans/gestrans-backend/pkg/env"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Supabase SupabaseConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Flags    FeatureFlagsConfig
}

// Load reads the environment, resolves legacy variable names and validates the
// settings required by the selected store driver. There is no fallback backend:
// a missing or malformed setting is an error.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Supabase.resolveLegacy()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadJWT reads only the token settings. Tools that mint tokens do not need a
// store configured.
func LoadJWT() (JWTConfig, error) {
	var cfg JWTConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return JWTConfig{}, fmt.Errorf("parsing jwt config: %w", err)
	}
	if !cfg.Enabled() {
		return JWTConfig{}, fmt.Errorf("%s is required", EnvJWTSecret)
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GESTRANS_APP_ENV" required:"true"`
	Port         string `envconfig:"GESTRANS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GESTRANS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GESTRANS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StoreConfig struct {
	Driver string `envconfig:"GESTRANS_STORE_DRIVER" default:"supabase"`
}

// Normalized returns the lower-cased driver name, defaulting to supabase.
func (s StoreConfig) Normalized() string {
	driver := strings.ToLower(strings.TrimSpace(s.Driver))
	if driver == "" {
		return StoreDriverSupabase
	}
	return driver
}

type SupabaseConfig struct {
	URL        string        `envconfig:"GESTRANS_SUPABASE_URL"`
	Key        string        `envconfig:"GESTRANS_SUPABASE_KEY"`
	Schema     string        `envconfig:"GESTRANS_SUPABASE_SCHEMA" default:"public"`
	Table      string        `envconfig:"GESTRANS_SUPABASE_TABLE" default:"transportadores"`
	Timeout    time.Duration `envconfig:"GESTRANS_SUPABASE_TIMEOUT" default:"10s"`
	ClientInfo string        `envconfig:"GESTRANS_SUPABASE_CLIENT_INFO" default:"gestrans-api/1.0.0"`
}

func (s *SupabaseConfig) resolveLegacy() {
	if strings.TrimSpace(s.URL) == "" {
		s.URL = env.First(legacySupabaseURLEnvVars...)
	}
	if strings.TrimSpace(s.Key) == "" {
		s.Key = env.First(legacySupabaseKeyEnvVars...)
	}
	s.URL = strings.TrimRight(strings.TrimSpace(s.URL), "/")
	s.Key = strings.TrimSpace(s.Key)
}

func (s SupabaseConfig) validate(allowPlainHTTP bool) error {
	var errs error
	switch {
	case s.URL == "":
		errs = multierr.Append(errs, fmt.Errorf("%s is required", EnvSupabaseURL))
	default:
		u, err := url.Parse(s.URL)
		if err != nil || u.Host == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s is not a valid url", EnvSupabaseURL))
		} else if u.Scheme != "https" && !(allowPlainHTTP && u.Scheme == "http") {
			errs = multierr.Append(errs, fmt.Errorf("%s must start with https://", EnvSupabaseURL))
		}
	}
	switch {
	case s.Key == "":
		errs = multierr.Append(errs, fmt.Errorf("%s is required", EnvSupabaseKey))
	case len(s.Key) < MinSupabaseKeyLen:
		errs = multierr.Append(errs, fmt.Errorf("%s looks invalid (shorter than %d characters)", EnvSupabaseKey, MinSupabaseKeyLen))
	}
	if strings.TrimSpace(s.Table) == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s must not be empty", EnvSupabaseTable))
	}
	return errs
}

type DBConfig struct {
	DSN string `envconfig:"GESTRANS_DB_DSN"`

	LegacyHost     string `envconfig:"GESTRANS_DB_HOST"`
	LegacyPort     int    `envconfig:"GESTRANS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GESTRANS_DB_USER"`
	LegacyPassword string `envconfig:"GESTRANS_DB_PASSWORD"`
	LegacyName     string `envconfig:"GESTRANS_DB_NAME"`
	LegacySSLMode  string `envconfig:"GESTRANS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GESTRANS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"GESTRANS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"GESTRANS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GESTRANS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GESTRANS_REDIS_URL"`
	Address      string        `envconfig:"GESTRANS_REDIS_ADDR"`
	Password     string        `envconfig:"GESTRANS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GESTRANS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GESTRANS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GESTRANS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GESTRANS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GESTRANS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GESTRANS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"GESTRANS_JWT_SECRET"`
	Issuer            string `envconfig:"GESTRANS_JWT_ISSUER" default:"gestrans"`
	ExpirationMinutes int    `envconfig:"GESTRANS_JWT_EXPIRATION_MINUTES" default:"480"`
}

// Enabled reports whether bearer auth is switched on.
func (j JWTConfig) Enabled() bool {
	return j.Secret != ""
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GESTRANS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GESTRANS_AUTO_MIGRATE" default:"false"`
}

func (c *Config) validate() error {
	var errs error
	switch c.Store.Normalized() {
	case StoreDriverSupabase:
		errs = multierr.Append(errs, c.Supabase.validate(c.App.IsDev()))
	case StoreDriverPostgres:
		errs = multierr.Append(errs, c.DB.EnsureDSN())
	case StoreDriverMemory:
		if c.App.IsProd() {
			errs = multierr.Append(errs, fmt.Errorf("%s=%s is not allowed in %s", EnvStoreDriver, StoreDriverMemory, AppEnvProd))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown %s %q", EnvStoreDriver, c.Store.Driver))
	}
	if c.App.IsProd() && !c.JWT.Enabled() {
		errs = multierr.Append(errs, fmt.Errorf("%s is required in %s", EnvJWTSecret, AppEnvProd))
	}
	if errs != nil {
		return fmt.Errorf("invalid configuration: %w", errs)
	}
	return nil
}

// EnsureDSN builds DSN from the discrete connection settings when it is unset.
func (db *DBConfig) EnsureDSN() error {
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

// Problems splits an aggregated validation error into its individual messages.
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	for _, e := range multierr.Errors(errors.Unwrap(err)) {
		out = append(out, e.Error())
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
