package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// GormLogger sends gorm output to slog. Statements are traced at debug
// because gallery writes carry blob parameters.
type GormLogger struct {
	LogLevel logger.LogLevel

	log  *slog.Logger
	slow time.Duration
}

var gormLevels = []struct {
	min   slog.Level
	level logger.LogLevel
}{
	{slog.LevelError, logger.Error},
	{slog.LevelWarn, logger.Warn},
}

func NewGormLogger(l *slog.Logger, level slog.Level) *GormLogger {
	g := &GormLogger{
		LogLevel: logger.Info,
		log:      l.With(slog.String("component", "gorm")),
		slow:     200 * time.Millisecond,
	}
	for _, m := range gormLevels {
		if level >= m.min {
			g.LogLevel = m.level
			break
		}
	}
	return g
}

func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *g
	c.LogLevel = level
	return &c
}

func (g *GormLogger) Info(ctx context.Context, format string, args ...any) {
	g.printf(ctx, logger.Info, slog.LevelInfo, format, args)
}

func (g *GormLogger) Warn(ctx context.Context, format string, args ...any) {
	g.printf(ctx, logger.Warn, slog.LevelWarn, format, args)
}

func (g *GormLogger) Error(ctx context.Context, format string, args ...any) {
	g.printf(ctx, logger.Error, slog.LevelError, format, args)
}

func (g *GormLogger) printf(ctx context.Context, floor logger.LogLevel, level slog.Level, format string, args []any) {
	if g.LogLevel < floor {
		return
	}
	g.log.Log(ctx, level, fmt.Sprintf(format, args...))
}

// Trace logs failed statements, then slow ones, then everything at the
// info level. A missing record is not a failure.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	var (
		msg   string
		level slog.Level
		extra slog.Attr
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.LogLevel >= logger.Error:
		msg, level, extra = "sql_error", slog.LevelError, slog.String("error", err.Error())
	case g.slow > 0 && elapsed > g.slow && g.LogLevel >= logger.Warn:
		msg, level, extra = "sql_slow", slog.LevelWarn, slog.Duration("threshold", g.slow)
	case g.LogLevel >= logger.Info:
		msg, level = "sql", slog.LevelDebug
	default:
		return
	}

	stmt, rows := fc()
	attrs := []slog.Attr{
		slog.String("statement", stmt),
		slog.Int64("rows", rows),
		slog.Int64("elapsed_ms", elapsed.Milliseconds()),
		slog.String("caller", utils.FileWithLineNum()),
	}
	if extra.Key != "" {
		attrs = append(attrs, extra)
	}
	g.log.LogAttrs(ctx, level, msg, attrs...)
}
