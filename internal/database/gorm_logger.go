package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// GormLogger routes gorm's statement log into slog. Missing rows are not
// logged as errors; repositories translate them into NotFound.
type GormLogger struct {
	logger *slog.Logger
	level  logger.LogLevel
	slow   time.Duration
}

func NewGormLogger(l *slog.Logger) *GormLogger {
	return &GormLogger{logger: l, level: logger.Warn, slow: slowQueryThreshold}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, logger.Error, slog.LevelError, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, threshold logger.LogLevel, level slog.Level, msg string, data []interface{}) {
	if l.level < threshold {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(msg, data...))
}

// Trace reports failed and slow statements. In gorm's Info mode every
// other statement is logged at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed > l.slow

	var level slog.Level
	var msg string
	switch {
	case failed && l.level >= logger.Error:
		level, msg = slog.LevelError, "sql statement failed"
	case slow && l.level >= logger.Warn:
		level, msg = slog.LevelWarn, "slow sql statement"
	case l.level >= logger.Info:
		level, msg = slog.LevelDebug, "sql statement"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if failed {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}
