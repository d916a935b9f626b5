package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"ledgersync"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Ledger struct {
		BaseURL        string        `envconfig:"LEDGER_BASE_URL" required:"true"`
		AuthURL        string        `envconfig:"LEDGER_AUTH_URL" required:"true"`
		OrganizationID string        `envconfig:"LEDGER_ORGANIZATION_ID" required:"true"`
		ClientID       string        `envconfig:"LEDGER_CLIENT_ID" required:"true"`
		ClientSecret   string        `envconfig:"LEDGER_CLIENT_SECRET" required:"true"`
		RefreshToken   string        `envconfig:"LEDGER_REFRESH_TOKEN" required:"true"`
		AccessToken    string        `envconfig:"LEDGER_ACCESS_TOKEN"`
		CallTimeout    time.Duration `envconfig:"LEDGER_CALL_TIMEOUT" default:"30s"`
	}

	Webhook struct {
		// Secret enables HS256 bearer verification on /webhook when set.
		Secret string `envconfig:"WEBHOOK_JWT_SECRET"`
	}

	DB struct {
		// Host left empty disables the reconciliation history store.
		Host     string `envconfig:"DB_HOST" default:""`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ledgersync"`
	}
}

func (c *Config) HistoryEnabled() bool {
	return c.DB.Host != ""
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
