package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"sync"
	"time"
)

var cfg *Config
var once sync.Once

// Config is the configuration for the application
type Config struct {
	Server
	PostgreSQL
	Store
	Redis
	Webhook
	Processor
	Process
	Log
	Metrics
}

// Server is the configuration for the server
type Server struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Addr returns the address for the server
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", "0.0.0.0", s.Port)
}

// PostgreSQL is the configuration for the database
type PostgreSQL struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	Database        string `env:"DB_DATABASE" envDefault:"txwebhook"`
	Username        string `env:"DB_USERNAME" envDefault:"txwebhook"`
	Password        string `env:"DB_PASSWORD" envDefault:"txwebhook"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnAttempts int    `env:"DB_MAX_CONN_ATTEMPTS" envDefault:"5"`
}

// DSN returns the DSN for the database
func (c PostgreSQL) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=%s",
		c.Driver,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

// Store selects the transaction store implementation.
type Store struct {
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/transactions.db"`
	Migrate     bool   `env:"DB_MIGRATE" envDefault:"true"`
}

// Redis is the configuration for the redis store driver.
type Redis struct {
	Addr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password  string `env:"REDIS_PASSWORD" envDefault:""`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"txwebhook"`
}

// Webhook configures the synchronous ingress path.
type Webhook struct {
	AckDeadline     time.Duration `env:"ACK_DEADLINE" envDefault:"500ms"`
	DefaultCurrency string        `env:"DEFAULT_CURRENCY" envDefault:"INR"`
}

// Processor configures the background transition of accepted transactions.
type Processor struct {
	Delay          time.Duration `env:"PROCESSING_DELAY" envDefault:"30s"`
	FailureRate    float64       `env:"PROCESSING_FAILURE_RATE" envDefault:"0"`
	Workers        int           `env:"PROCESSOR_WORKERS" envDefault:"64"`
	QueueSize      int           `env:"PROCESSOR_QUEUE_SIZE" envDefault:"1024"`
	UpdateAttempts int           `env:"PROCESSOR_UPDATE_ATTEMPTS" envDefault:"5"`
	UpdateBackoff  time.Duration `env:"PROCESSOR_UPDATE_BACKOFF" envDefault:"200ms"`
}

// Process configures the periodic stale PROCESSING check.
type Process struct {
	Interval   time.Duration `env:"STALE_CHECK_INTERVAL" envDefault:"1m"`
	StaleAfter time.Duration `env:"STALE_AFTER" envDefault:"10m"`
	Limit      int           `env:"STALE_CHECK_LIMIT" envDefault:"100"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE" envDefault:""`
}

type Metrics struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load loads the configuration from environment variables once and caches it.
// It panics on a malformed value, as the service cannot start with it.
func Load() *Config {
	once.Do(func() {
		c, err := LoadFromEnv()
		if err != nil {
			panic(err)
		}
		cfg = c
	})

	return cfg
}

// LoadFromEnv reads the configuration without caching.
func LoadFromEnv() (*Config, error) {
	c := &Config{}
	cfgType := reflect.TypeOf(*c)
	cfgValue := reflect.ValueOf(c).Elem()

	for i := 0; i < cfgType.NumField(); i++ {
		field := cfgType.Field(i)
		fieldValue := cfgValue.Field(i)
		for j := 0; j < field.Type.NumField(); j++ {
			subField := field.Type.Field(j)
			envVar := subField.Tag.Get("env")
			envDefault := subField.Tag.Get("envDefault")
			value := getEnv(envVar, envDefault)

			if err := setField(fieldValue.Field(j), value); err != nil {
				return nil, fmt.Errorf("config %s=%q: %w", envVar, value, err)
			}
		}
	}

	return c, nil
}

func setField(v reflect.Value, value string) error {
	if v.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		v.SetInt(int64(d))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field kind %s", v.Kind())
	}
	return nil
}

// getEnv retrieves the value of the environment variable named by the key or returns the defaultValue if not set
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
	}
	return value
}
