package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "MILKDIARY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MILKDIARY_DB_DSN"
	EnvDBHost = "MILKDIARY_DB_HOST"
	EnvDBUser = "MILKDIARY_DB_USER"
	EnvDBName = "MILKDIARY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Billing       BillingConfig
	AdminSeed     AdminSeedConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"MILKDIARY_APP_ENV" required:"true"`
	Port         string `envconfig:"MILKDIARY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MILKDIARY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MILKDIARY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MILKDIARY_DB_DSN"`
	Driver string `envconfig:"MILKDIARY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MILKDIARY_DB_HOST"`
	LegacyPort     int    `envconfig:"MILKDIARY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MILKDIARY_DB_USER"`
	LegacyPassword string `envconfig:"MILKDIARY_DB_PASSWORD"`
	LegacyName     string `envconfig:"MILKDIARY_DB_NAME"`
	LegacySSLMode  string `envconfig:"MILKDIARY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MILKDIARY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MILKDIARY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MILKDIARY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MILKDIARY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MILKDIARY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MILKDIARY_REDIS_ADDR"`
	Password     string        `envconfig:"MILKDIARY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MILKDIARY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MILKDIARY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MILKDIARY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MILKDIARY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MILKDIARY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MILKDIARY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MILKDIARY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MILKDIARY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MILKDIARY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MILKDIARY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MILKDIARY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MILKDIARY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MILKDIARY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MILKDIARY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MILKDIARY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"MILKDIARY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"MILKDIARY_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"MILKDIARY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type BillingConfig struct {
	// CompanyName and FooterNote appear on every generated bill document.
	CompanyName string `envconfig:"MILKDIARY_BILLING_COMPANY_NAME" default:"MILK DIARY PRIVATE LIMITED"`
	FooterNote  string `envconfig:"MILKDIARY_BILLING_FOOTER_NOTE" default:"Thank you for choosing Milk Diary Pvt Ltd."`
}

// AdminSeedConfig drives the explicit operator-account seeding command.
// Both values must be present; there is no default credential.
type AdminSeedConfig struct {
	Phone    string `envconfig:"MILKDIARY_ADMIN_PHONE"`
	Password string `envconfig:"MILKDIARY_ADMIN_PASSWORD"`
	Name     string `envconfig:"MILKDIARY_ADMIN_NAME" default:"Administrator"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MILKDIARY_AUTO_MIGRATE" default:"false"`
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
