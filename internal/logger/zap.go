package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger together with its adjustable level.
type Logger struct {
	*zap.SugaredLogger
	level zap.AtomicLevel
}

const defaultZapLevel = zapcore.InfoLevel

func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

func newConsoleCore(level zap.AtomicLevel) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(cfg)
	ws := zapcore.Lock(os.Stdout)
	return zapcore.NewCore(encoder, ws, level)
}

func newZapLogger(levelStr string) *Logger {
	level := zap.NewAtomicLevelAt(toZapLevel(levelStr))
	return &Logger{
		SugaredLogger: zap.New(newConsoleCore(level)).Sugar(),
		level:         level,
	}
}

// SetLevel changes the level at runtime. Unknown names fall back to info.
func (l *Logger) SetLevel(levelStr string) {
	l.level.SetLevel(toZapLevel(normalizeLevel(levelStr)))
}

// Level reports the current level name.
func (l *Logger) Level() string {
	return l.level.Level().String()
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		level:         zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}
