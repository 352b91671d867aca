package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SHOPSTACK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHOPSTACK_DB_DSN"
	EnvDBHost = "SHOPSTACK_DB_HOST"
	EnvDBUser = "SHOPSTACK_DB_USER"
	EnvDBName = "SHOPSTACK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Sequence  SequenceConfig
	Inventory InventoryConfig
	Dashboard DashboardConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"SHOPSTACK_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPSTACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPSTACK_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"SHOPSTACK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPSTACK_DB_DSN"`
	Driver string `envconfig:"SHOPSTACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPSTACK_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPSTACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPSTACK_DB_USER"`
	LegacyPassword string `envconfig:"SHOPSTACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPSTACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPSTACK_REDIS_URL"`
	Address      string        `envconfig:"SHOPSTACK_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPSTACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPSTACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPSTACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPSTACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPSTACK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPSTACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOPSTACK_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPSTACK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPSTACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPSTACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPSTACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPSTACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPSTACK_ARGON_KEY_LEN" default:"32"`
}

// SequenceConfig carries the seeds and formatting for the identifier
// sequences. The original product shipped SO + 4-digit padding seeded at
// 1000; both stay configurable rather than hard-coded.
type SequenceConfig struct {
	SaleSeed      int64         `envconfig:"SHOPSTACK_SEQ_SALE_SEED" default:"1000"`
	SalePrefix    string        `envconfig:"SHOPSTACK_SEQ_SALE_PREFIX" default:"SO"`
	SalePadWidth  int           `envconfig:"SHOPSTACK_SEQ_SALE_PAD_WIDTH" default:"4"`
	CustomerSeed  int64         `envconfig:"SHOPSTACK_SEQ_CUSTOMER_SEED" default:"999"`
	MaxRetries    uint64        `envconfig:"SHOPSTACK_SEQ_MAX_RETRIES" default:"5"`
	RetryBaseWait time.Duration `envconfig:"SHOPSTACK_SEQ_RETRY_BASE_WAIT" default:"5ms"`
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"SHOPSTACK_LOW_STOCK_THRESHOLD" default:"10"`
}

type DashboardConfig struct {
	SummaryCacheTTL time.Duration `envconfig:"SHOPSTACK_DASHBOARD_CACHE_TTL" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPSTACK_AUTO_MIGRATE" default:"false"`
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
