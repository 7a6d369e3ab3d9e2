package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMongo     = "mongo"
	BackendCassandra = "cassandra"
	BackendMemory    = "memory"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Cassandra CassandraConfig
	JWT       JWTConfig
	Log       LogConfig

	// StoreBackend selects where notifications live: mongo, cassandra or memory.
	// Users and categories stay in Mongo unless the backend is memory.
	StoreBackend        string
	UsersBreakerTimeout time.Duration
}

type ServerConfig struct {
	Port       string
	CORSOrigin string
}

type MongoConfig struct {
	URI    string
	DBName string
}

type CassandraConfig struct {
	Hosts    []string
	Keyspace string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type LogConfig struct {
	File  string
	Level string
}

// LoadEnvFile loads variables from path into the process environment.
// A missing file is not an error; the environment alone is enough.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s file: %w", path, err)
	}
	return nil
}

// Load reads the configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "create_class")
	v.SetDefault("STORE_BACKEND", BackendMongo)
	v.SetDefault("CASS_DB", "127.0.0.1")
	v.SetDefault("CASS_KEYSPACE", "notifications")
	v.SetDefault("JWT_TTL", "2h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("USERS_BREAKER_TIMEOUT", "5s")

	cfg := &Config{
		Server: ServerConfig{
			Port:       v.GetString("SERVER_PORT"),
			CORSOrigin: v.GetString("CORS_ORIGIN"),
		},
		Mongo: MongoConfig{
			URI:    v.GetString("MONGO_URI"),
			DBName: v.GetString("MONGO_DB_NAME"),
		},
		Cassandra: CassandraConfig{
			Hosts:    splitHosts(v.GetString("CASS_DB")),
			Keyspace: v.GetString("CASS_KEYSPACE"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Log: LogConfig{
			File:  v.GetString("LOG_FILE"),
			Level: v.GetString("LOG_LEVEL"),
		},
		StoreBackend:        strings.ToLower(v.GetString("STORE_BACKEND")),
		UsersBreakerTimeout: v.GetDuration("USERS_BREAKER_TIMEOUT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is not set in the environment variables")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be a positive duration")
	}
	switch c.StoreBackend {
	case BackendMongo, BackendCassandra, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendCassandra && len(c.Cassandra.Hosts) == 0 {
		return fmt.Errorf("CASS_DB must list at least one host")
	}
	return nil
}

func splitHosts(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
