package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (c *LogConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := c.level(); err != nil {
		el.Add(err)
	}
	switch c.Format {
	case "", "text", "json":
	default:
		el.Add(fmt.Errorf("log: unknown format %q", c.Format))
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		el.Add(fmt.Errorf("log: rotation settings must not be negative"))
	}

	return el.Err()
}

func (c *LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return lvl, fmt.Errorf("log: parsing level: %w", err)
	}
	return lvl, nil
}

func (c *LogConfig) writer() io.Writer {
	if c.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
	}
}

// buildLogger returns a logger writing to the configured destination. Log
// files are rotated by size.
func (c *LogConfig) buildLogger() (*slog.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	w := c.writer()

	var h slog.Handler
	if c.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}
