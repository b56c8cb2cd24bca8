package pkg

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/SAP-F-2025/quiz-service/internal/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{RedisURL: "redis://" + mr.Addr() + "/0"})
	if err != nil {
		t.Fatalf("NewRedisClient() error = %v", err)
	}
	defer client.Close()

	if _, err := NewRedisClient(&config.Config{RedisURL: "not a url"}); err == nil {
		t.Errorf("expected error for invalid url")
	}
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormLogger.LogLevel
		elapsed time.Duration
		err     error
		want    string
	}{
		{name: "error", level: gormLogger.Warn, err: errors.New("boom"), want: "SQL error"},
		{name: "not found is quiet", level: gormLogger.Warn, err: gorm.ErrRecordNotFound, want: ""},
		{name: "slow", level: gormLogger.Warn, elapsed: time.Second, want: "Slow SQL"},
		{name: "fast at warn", level: gormLogger.Warn, want: ""},
		{name: "silent", level: gormLogger.Silent, err: errors.New("boom"), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewGormLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))).LogMode(tt.level)

			logger.Trace(context.Background(), time.Now().Add(-tt.elapsed), func() (string, int64) {
				return "SELECT 1", 1
			}, tt.err)

			if tt.want == "" && buf.Len() != 0 {
				t.Errorf("expected no output, got %q", buf.String())
			}
			if tt.want != "" && !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, buf.String())
			}
		})
	}
}
