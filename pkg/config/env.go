package config

const (
	EnvPrefix = "GESTRANS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreDriverSupabase = "supabase"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	// MinSupabaseKeyLen rejects obviously truncated API keys.
	MinSupabaseKeyLen = 100
)

const (
	EnvAppEnv      = "GESTRANS_APP_ENV"
	EnvPort        = "GESTRANS_APP_PORT"
	EnvLogLevel    = "GESTRANS_LOG_LEVEL"
	EnvStoreDriver = "GESTRANS_STORE_DRIVER"

	EnvSupabaseURL   = "GESTRANS_SUPABASE_URL"
	EnvSupabaseKey   = "GESTRANS_SUPABASE_KEY"
	EnvSupabaseTable = "GESTRANS_SUPABASE_TABLE"

	EnvDBDSN  = "GESTRANS_DB_DSN"
	EnvDBHost = "GESTRANS_DB_HOST"
	EnvDBUser = "GESTRANS_DB_USER"
	EnvDBName = "GESTRANS_DB_NAME"

	EnvRedisURL  = "GESTRANS_REDIS_URL"
	EnvJWTSecret = "GESTRANS_JWT_SECRET"
)

// Variable names used by the earlier front-end builds. They map onto the same
// two settings and are consulted only when the canonical names are unset.
var (
	legacySupabaseURLEnvVars = []string{"VITE_SUPABASE_URL", "REACT_APP_SUPABASE_URL"}
	legacySupabaseKeyEnvVars = []string{"VITE_SUPABASE_KEY", "REACT_APP_SUPABASE_KEY"}

	legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
)
