package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Deye: Deye{
			AppID:     "app",
			AppSecret: "secret",
			Email:     "user@example.com",
			Password:  "pw",
			BaseURL:   defaultBaseURL,
		},
		Telegram: Telegram{BotToken: "tok", ChatID: "42"},
		Monitor:  Monitor{PollIntervalSec: 60, LowSOCThreshold: 20, LowSOCReset: 25},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"app id", func(c *Config) { c.Deye.AppID = "" }, "deye.app_id"},
		{"app secret", func(c *Config) { c.Deye.AppSecret = "" }, "deye.app_secret"},
		{"email", func(c *Config) { c.Deye.Email = "" }, "deye.email"},
		{"password", func(c *Config) { c.Deye.Password = "" }, "deye.password"},
		{"bot token", func(c *Config) { c.Telegram.BotToken = "" }, "telegram.bot_token"},
		{"chat id", func(c *Config) { c.Telegram.ChatID = "" }, "telegram.chat_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestValidate_PollInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Monitor.PollIntervalSec = 0
	if err := cfg.validate(); err == nil {
		t.Fatalf("zero poll interval must be rejected")
	}
}

func TestValidate_HysteresisBand(t *testing.T) {
	cfg := validConfig()

	cfg.Monitor.LowSOCReset = cfg.Monitor.LowSOCThreshold
	if err := cfg.validate(); err == nil {
		t.Fatalf("reset equal to threshold must be rejected")
	}

	cfg.Monitor.LowSOCReset = cfg.Monitor.LowSOCThreshold - 1
	if err := cfg.validate(); err == nil {
		t.Fatalf("reset below threshold must be rejected")
	}
}
