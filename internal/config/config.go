package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all process-lifetime settings. Values are immutable after Load.
type Config struct {
	Deye     Deye
	Telegram Telegram
	Monitor  Monitor
	DBPath   string
	Port     string
	LogLevel string
}

// Deye holds the remote API credentials and target.
type Deye struct {
	AppID     string
	AppSecret string
	Email     string
	Password  string
	StationID int64 // 0 means auto-select the first listed station
	BaseURL   string
}

// Telegram holds the notification channel settings.
type Telegram struct {
	BotToken string
	ChatID   string
}

// Monitor holds the polling and alerting knobs.
type Monitor struct {
	PollIntervalSec int
	LowSOCThreshold int // alert when SOC <= this
	LowSOCReset     int // recover when SOC >= this; must be > LowSOCThreshold
}

const defaultBaseURL = "https://eu1-developer.deyecloud.com/v1.0"

// Load reads configs/config.yml (optional) with environment-variable
// overrides. A local .env file is honored the same way the shell would
// export it.
func Load() (Config, error) {
	_ = godotenv.Load() // best effort; absence is fine

	v := viper.New()
	v.AddConfigPath("configs")
	v.SetConfigName("config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		// no config file: environment-only configuration
	}

	cfg := Config{
		Deye: Deye{
			AppID:     v.GetString("deye.app_id"),
			AppSecret: v.GetString("deye.app_secret"),
			Email:     v.GetString("deye.email"),
			Password:  v.GetString("deye.password"),
			StationID: v.GetInt64("deye.station_id"),
			BaseURL:   v.GetString("deye.base_url"),
		},
		Telegram: Telegram{
			BotToken: v.GetString("telegram.bot_token"),
			ChatID:   v.GetString("telegram.chat_id"),
		},
		Monitor: Monitor{
			PollIntervalSec: v.GetInt("monitor.poll_interval_sec"),
			LowSOCThreshold: v.GetInt("monitor.low_soc_threshold"),
			LowSOCReset:     v.GetInt("monitor.low_soc_reset"),
		},
		DBPath:   v.GetString("db.path"),
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deye.base_url", defaultBaseURL)
	v.SetDefault("monitor.poll_interval_sec", 60)
	v.SetDefault("monitor.low_soc_threshold", 20)
	v.SetDefault("monitor.low_soc_reset", 25)
	v.SetDefault("db.path", "soc_history.db")
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
}

func (c Config) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"deye.app_id", c.Deye.AppID},
		{"deye.app_secret", c.Deye.AppSecret},
		{"deye.email", c.Deye.Email},
		{"deye.password", c.Deye.Password},
		{"telegram.bot_token", c.Telegram.BotToken},
		{"telegram.chat_id", c.Telegram.ChatID},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("setting %s is required", r.key)
		}
	}

	if c.Monitor.PollIntervalSec <= 0 {
		return fmt.Errorf("monitor.poll_interval_sec must be positive, got %d", c.Monitor.PollIntervalSec)
	}
	// The hysteresis band must be non-empty or alerts will flap at a single
	// boundary.
	if c.Monitor.LowSOCReset <= c.Monitor.LowSOCThreshold {
		return fmt.Errorf("monitor.low_soc_reset (%d) must be greater than monitor.low_soc_threshold (%d)",
			c.Monitor.LowSOCReset, c.Monitor.LowSOCThreshold)
	}
	return nil
}
