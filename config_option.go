package entity

import (
	"time"

	"github.com/go-entity/entity/logger"
	"github.com/go-entity/entity/schema"
)

// ConfigOption use functional option for entity Config.
type ConfigOption func(c *Config)

// WithNamingStrategy set schema namer.
func WithNamingStrategy(namer schema.Namer) ConfigOption {
	return func(c *Config) {
		c.NamingStrategy = namer
	}
}

// WithTablePrefix set the prefix of derived table names, keeping the rest of the default naming strategy.
func WithTablePrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.NamingStrategy = schema.NamingStrategy{TablePrefix: prefix}
	}
}

// WithLogger set logger.
func WithLogger(logger logger.Interface) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithNowFunc set now func.
func WithNowFunc(fn func() time.Time) ConfigOption {
	return func(c *Config) {
		c.NowFunc = fn
	}
}

// WithDateFormat set the storage format of date attributes, a Go time layout.
func WithDateFormat(format string) ConfigOption {
	return func(c *Config) {
		c.DateFormat = format
	}
}
