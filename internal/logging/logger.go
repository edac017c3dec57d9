package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogFormat selects the logrus formatter.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config holds logger settings.
type Config struct {
	Level  string
	Format LogFormat
	// Output defaults to stderr so report lines on stdout stay clean.
	Output io.Writer
}

// Validate checks the level and format.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	switch c.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	return nil
}

// New builds a logger from cfg. A nil cfg yields an info-level text logger.
func New(cfg *Config) (*logrus.Logger, error) {
	if cfg == nil {
		cfg = &Config{Level: "info", Format: LogFormatText}
	}
	c := *cfg
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if c.Format == "" {
		c.Format = LogFormatText
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	level, _ := logrus.ParseLevel(c.Level)

	l := logrus.New()
	l.SetLevel(level)
	if c.Output != nil {
		l.SetOutput(c.Output)
	} else {
		l.SetOutput(os.Stderr)
	}
	switch c.Format {
	case LogFormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   true,
		})
	}
	return l, nil
}

// Discard returns a logger that drops everything; used when setup fails or in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
