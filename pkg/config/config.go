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
	Assistant     AssistantConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Groq          GroqConfig
	OpenAI        OpenAIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REDRESERVE_APP_ENV" required:"true"`
	Port         string `envconfig:"REDRESERVE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"REDRESERVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REDRESERVE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"REDRESERVE_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"REDRESERVE_DB_DSN"`
	Driver     string `envconfig:"REDRESERVE_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"REDRESERVE_SQLITE_PATH" default:"redreserve.db"`

	Host     string `envconfig:"REDRESERVE_DB_HOST"`
	Port     int    `envconfig:"REDRESERVE_DB_PORT" default:"5432"`
	User     string `envconfig:"REDRESERVE_DB_USER"`
	Password string `envconfig:"REDRESERVE_DB_PASSWORD"`
	Name     string `envconfig:"REDRESERVE_DB_NAME"`
	SSLMode  string `envconfig:"REDRESERVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REDRESERVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REDRESERVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REDRESERVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REDRESERVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"REDRESERVE_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDRESERVE_REDIS_URL"`
	Address      string        `envconfig:"REDRESERVE_REDIS_ADDR"`
	Password     string        `envconfig:"REDRESERVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"REDRESERVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDRESERVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDRESERVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDRESERVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDRESERVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REDRESERVE_REDIS_WRITE_TIMEOUT" default:"5s"`

	IdempotencyTTL time.Duration `envconfig:"REDRESERVE_IDEMPOTENCY_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"REDRESERVE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"REDRESERVE_JWT_ISSUER" default:"redreserve"`
	ExpirationMinutes      int    `envconfig:"REDRESERVE_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTokenTTLMinutes int    `envconfig:"REDRESERVE_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REDRESERVE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REDRESERVE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REDRESERVE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REDRESERVE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REDRESERVE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"REDRESERVE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"REDRESERVE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"REDRESERVE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"REDRESERVE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"REDRESERVE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"REDRESERVE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type AssistantConfig struct {
	RateWindow time.Duration `envconfig:"REDRESERVE_ASSISTANT_RATE_WINDOW" default:"1m"`
	RateLimit  int           `envconfig:"REDRESERVE_ASSISTANT_RATE_LIMIT" default:"10"`
}

// UsesSQLite reports whether the local sqlite driver is selected.
func (db DBConfig) UsesSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REDRESERVE_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	FrontendURL  string   `envconfig:"REDRESERVE_FRONTEND_URL" default:"http://localhost:5173"`
	ExtraOrigins []string `envconfig:"REDRESERVE_CORS_EXTRA_ORIGINS"`
}

// AllowedOrigins returns the deduplicated origin list used by the CORS middleware.
func (c CORSConfig) AllowedOrigins() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, origin := range append([]string{c.FrontendURL}, c.ExtraOrigins...) {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		out = append(out, origin)
	}
	return out
}

type GroqConfig struct {
	APIKey  string `envconfig:"REDRESERVE_GROQ_API_KEY"`
	Model   string `envconfig:"REDRESERVE_GROQ_MODEL" default:"llama-3.1-70b-versatile"`
	BaseURL string `envconfig:"REDRESERVE_GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
}

type OpenAIConfig struct {
	APIKey  string `envconfig:"REDRESERVE_OPENAI_API_KEY"`
	Model   string `envconfig:"REDRESERVE_OPENAI_MODEL" default:"gpt-4o-mini"`
	BaseURL string `envconfig:"REDRESERVE_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.UsesSQLite() {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
