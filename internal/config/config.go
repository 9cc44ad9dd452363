package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

type Config struct {
	Server  ServerConfig  `env:",prefix=SERVER_"`
	Storage StorageConfig `env:",prefix=STORAGE_"`
	Auth    AuthConfig    `env:",prefix=AUTH_"`

	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	ReadTimeout  int      `env:"READ_TIMEOUT,default=15"`  // seconds
	WriteTimeout int      `env:"WRITE_TIMEOUT,default=15"` // seconds
	AllowOrigins []string `env:"ALLOW_ORIGINS,default=http://localhost:3000"`
	// Redemption attempts allowed per client per second, and the burst on top.
	RedeemRate  float64 `env:"REDEEM_RATE,default=2"`
	RedeemBurst int     `env:"REDEEM_BURST,default=5"`
}

type StorageConfig struct {
	Driver        string `env:"DRIVER,default=memory"`
	MongoDBURI    string `env:"MONGODB_URI"`
	MongoPassword string `env:"MONGODB_PASSWORD"`
	MongoDatabase string `env:"MONGODB_DATABASE,default=supermoment"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	JWKSURL   string `env:"JWKS_URL"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.MongoDBURI == "" {
			return fmt.Errorf("STORAGE_MONGODB_URI is required for the mongo storage driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (expected memory or mongo)", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		return fmt.Errorf("AUTH_JWT_SECRET or AUTH_JWKS_URL is required")
	}
	if c.Server.RedeemRate <= 0 || c.Server.RedeemBurst <= 0 {
		return fmt.Errorf("SERVER_REDEEM_RATE and SERVER_REDEEM_BURST must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
