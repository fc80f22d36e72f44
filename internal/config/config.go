package config

import "time"

// Config holds server configuration values.
type Config struct {
	ChatAddr        string        `mapstructure:"chat_addr" yaml:"chat_addr"`
	AdminAddr       string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	Workers         int           `mapstructure:"workers" yaml:"workers"`
	QueueCapacity   int           `mapstructure:"queue_capacity" yaml:"queue_capacity"`
	ConnTimeout     time.Duration `mapstructure:"conn_timeout" yaml:"conn_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ChatAddr:        ":8080",
		AdminAddr:       ":8081",
		Workers:         8,
		QueueCapacity:   128,
		ConnTimeout:     10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ChatAddr != "" {
		c.ChatAddr = other.ChatAddr
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.QueueCapacity != 0 {
		c.QueueCapacity = other.QueueCapacity
	}
	if other.ConnTimeout != 0 {
		c.ConnTimeout = other.ConnTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
