// Package logging provides the structured logger used across the engine,
// its worker pools, and its HTTP/observability surface.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig controls logger construction.
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal (default: info)
	Format      string // json or text (default: json)
	Output      string // file path; empty means stderr
	Development bool   // enables stack traces on warn+ and caller info
}

// Logger wraps zap.Logger with domain-specific helpers.
type Logger struct {
	Logger *zap.Logger
	sugar  *zap.SugaredLogger
}

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

// InitLogger builds a Logger from config. It never returns nil and never
// panics: an invalid output path falls back to stderr.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "message"
	encoderCfg.LevelKey = "level"

	var encoder zapcore.Encoder
	if strings.EqualFold(cfg.Format, "text") {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sink := zapcore.AddSync(os.Stderr)
	if cfg.Output != "" {
		if f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			sink = zapcore.AddSync(f)
		}
	}

	core := zapcore.NewCore(encoder, sink, level)

	var opts []zap.Option
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.WarnLevel))
	}

	zl := zap.New(core, opts...)

	return &Logger{
		Logger: zl,
		sugar:  zl.Sugar(),
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	case "info":
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}

// GetGlobalLogger returns the process-wide logger, constructing a default
// one on first use.
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// InitGlobalLogger builds a logger from cfg and installs it as the global
// logger, returning it.
func InitGlobalLogger(cfg LogConfig) *Logger {
	logger := InitLogger(cfg)
	SetGlobalLogger(logger)
	return logger
}

// SetGlobalLogger installs logger as the global logger.
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// L is shorthand for GetGlobalLogger.
func L() *Logger {
	return GetGlobalLogger()
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.Logger.With(fields...)
	return &Logger{Logger: child, sugar: child.Sugar()}
}

// WithComponent tags the logger with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(Component(name))
}

// WithExchange tags the logger with an exchange name.
func (l *Logger) WithExchange(name string) *Logger {
	return l.With(Exchange(name))
}

// WithSymbol tags the logger with a trading symbol.
func (l *Logger) WithSymbol(symbol string) *Logger {
	return l.With(Symbol(symbol))
}

// WithPairID tags the logger with a numeric pair identifier.
func (l *Logger) WithPairID(id int) *Logger {
	return l.With(PairID(id))
}

// Sugar returns the underlying sugared logger for printf-style calls.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.Logger.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.Logger.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.Logger.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.Logger.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.Logger.Fatal(msg, fields...) }

// Package-level convenience functions operate on the global logger.

func Debug(msg string, fields ...zap.Field) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetGlobalLogger().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { GetGlobalLogger().Fatal(msg, fields...) }

func Debugf(template string, args ...interface{}) { GetGlobalLogger().sugar.Debugf(template, args...) }
func Infof(template string, args ...interface{})  { GetGlobalLogger().sugar.Infof(template, args...) }
func Warnf(template string, args ...interface{})  { GetGlobalLogger().sugar.Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { GetGlobalLogger().sugar.Errorf(template, args...) }

// Domain field constructors. These give every component a consistent set
// of structured-log keys instead of ad-hoc strings.

func Exchange(name string) zap.Field    { return zap.String("exchange", name) }
func Symbol(symbol string) zap.Field    { return zap.String("symbol", symbol) }
func PairID(id int) zap.Field           { return zap.Int("pair_id", id) }
func OrderID(id string) zap.Field       { return zap.String("order_id", id) }
func Price(v float64) zap.Field         { return zap.Float64("price", v) }
func Volume(v float64) zap.Field        { return zap.Float64("volume", v) }
func Spread(v float64) zap.Field        { return zap.Float64("spread", v) }
func PNL(v float64) zap.Field           { return zap.Float64("pnl", v) }
func Side(side string) zap.Field        { return zap.String("side", side) }
func State(state string) zap.Field      { return zap.String("state", state) }
func Latency(ms float64) zap.Field      { return zap.Float64("latency_ms", ms) }
func RequestID(id string) zap.Field     { return zap.String("request_id", id) }
func UserID(id int) zap.Field           { return zap.Int("user_id", id) }
func Component(name string) zap.Field   { return zap.String("component", name) }

// Re-exported zap field constructors so callers only need this package.
func String(key, value string) zap.Field      { return zap.String(key, value) }
func Int(key string, value int) zap.Field     { return zap.Int(key, value) }
func Int64(key string, value int64) zap.Field { return zap.Int64(key, value) }
func Float64(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}
func Bool(key string, value bool) zap.Field { return zap.Bool(key, value) }
func Err(err error) zap.Field                { return zap.Error(err) }
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

// fieldsToInterface flattens zap fields into alternating key/value pairs,
// for callers that need to bridge into a printf-style sink.
func fieldsToInterface(fields []zap.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		out = append(out, f.Key, enc.Fields[f.Key])
	}
	return out
}
