package config

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

var logger = logrus.New()

// InitLogger configures the process-wide logger. Unknown levels fall back to info.
func InitLogger(cfg LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		})
	}
	logger.SetOutput(out)
}

func Logger() *logrus.Logger {
	return logger
}

// ContextWithRequestID tags ctx with a fresh correlation id unless it already has one.
func ContextWithRequestID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(ctxKey{}).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, uuid.NewString())
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if id := RequestID(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

// Fingerprint shortens a secret to something safe to log.
func Fingerprint(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return "..." + secret[len(secret)-6:]
}
