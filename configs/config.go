package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type R2 struct {
	AccountID  string `env:"R2_ACCOUNT_ID"`
	AccessKey  string `env:"R2_ACCESS_KEY"`
	SecretKey  string `env:"R2_SECRET_KEY"`
	BucketName string `env:"R2_BUCKET_NAME"`
	PublicURL  string `env:"R2_PUBLIC_URL"`
}

// Enabled reports whether enough is set to talk to the bucket.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

type Simulator struct {
	Interval    time.Duration `env:"SIMULATOR_INTERVAL" env-default:"5s"`
	SuccessRate float64       `env:"PUBLISH_SUCCESS_RATE" env-default:"0.9"`
}

type Gemini struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type Credentials struct {
	Path string `env:"CREDENTIALS_PATH" env-default:"./data"`
	Slot string `env:"CREDENTIALS_SLOT" env-default:"astra-boltz-api-keys"`
}

type Config struct {
	Env             string        `env:"APP_ENV" env-default:"development"`
	Port            int           `env:"PORT" env-default:"3000"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	TimeZone        string        `env:"TIME_ZONE" env-default:"Local"`
	MinScheduleLead time.Duration `env:"MIN_SCHEDULE_LEAD" env-default:"1m"`
	RedisURI        string        `env:"REDIS_URI"`
	FrontendURL     string        `env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	SecretKey       string        `env:"SECRET_KEY"`
	AccessKey       string        `env:"ACCESS_KEY"`
	Simulator       Simulator
	Gemini          Gemini
	Credentials     Credentials
	R2              R2
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		help, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("read configuration: %w\n%s", err, help)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves TIME_ZONE; calendar days and form times are read in it.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

func (c *Config) validate() error {
	if c.Simulator.Interval <= 0 {
		return fmt.Errorf("SIMULATOR_INTERVAL must be positive, got %s", c.Simulator.Interval)
	}
	if c.Simulator.SuccessRate < 0 || c.Simulator.SuccessRate > 1 {
		return fmt.Errorf("PUBLISH_SUCCESS_RATE must be within [0, 1], got %v", c.Simulator.SuccessRate)
	}
	if c.MinScheduleLead < 0 {
		return fmt.Errorf("MIN_SCHEDULE_LEAD must not be negative, got %s", c.MinScheduleLead)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return nil
}
