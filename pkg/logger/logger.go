// Package logger provides component-scoped structured logging on top of zap.
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a config string onto a LogLevel. Unknown values map to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar = build("development")
)

func build(mode string) *zap.SugaredLogger {
	var cfg zap.Config
	if mode == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level
	cfg.DisableStacktrace = true
	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Init rebuilds the global logger. mode "production" emits JSON, anything else
// emits human-readable console output.
func Init(mode string) {
	l := build(strings.ToLower(strings.TrimSpace(mode)))
	mu.Lock()
	old := sugar
	sugar = l
	mu.Unlock()
	_ = old.Sync()
}

func SetLevel(l LogLevel) {
	switch l {
	case DEBUG:
		level.SetLevel(zapcore.DebugLevel)
	case WARN:
		level.SetLevel(zapcore.WarnLevel)
	case ERROR:
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

func GetLevel() LogLevel {
	switch level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return ERROR
	default:
		return INFO
	}
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func log(l LogLevel, component, msg string, fields map[string]interface{}) {
	kv := make([]interface{}, 0, 2+len(fields)*2)
	if component != "" {
		kv = append(kv, "component", component)
	}
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	s := current()
	switch l {
	case DEBUG:
		s.Debugw(msg, kv...)
	case WARN:
		s.Warnw(msg, kv...)
	case ERROR:
		s.Errorw(msg, kv...)
	default:
		s.Infow(msg, kv...)
	}
}

func Debug(msg string) { log(DEBUG, "", msg, nil) }
func Info(msg string) { log(INFO, "", msg, nil) }
func Warn(msg string) { log(WARN, "", msg, nil) }
func Error(msg string) { log(ERROR, "", msg, nil) }
func DebugC(component, msg string) { log(DEBUG, component, msg, nil) }
func InfoC(component, msg string) { log(INFO, component, msg, nil) }
func WarnC(component, msg string) { log(WARN, component, msg, nil) }
func ErrorC(component, msg string) { log(ERROR, component, msg, nil) }
func DebugF(msg string, f map[string]interface{}) { log(DEBUG, "", msg, f) }
func InfoF(msg string, f map[string]interface{}) { log(INFO, "", msg, f) }

func DebugCF(component, msg string, fields map[string]interface{}) {
	log(DEBUG, component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]interface{}) {
	log(INFO, component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]interface{}) {
	log(WARN, component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]interface{}) {
	log(ERROR, component, msg, fields)
}
