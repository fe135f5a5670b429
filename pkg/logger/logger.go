package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log         *zap.SugaredLogger
	atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// levelFirstEncoder writes "[LEVEL] 2006-01-02T15:04:05" ahead of each entry
func levelFirstEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
	enc.AppendString(time.Now().Format("2006-01-02T15:04:05"))
}

var consoleEncoder = zapcore.EncoderConfig{
	TimeKey:       "",
	LevelKey:      "level",
	MessageKey:    "msg",
	CallerKey:     "caller",
	StacktraceKey: "stacktrace",
	EncodeLevel:   levelFirstEncoder,
	EncodeCaller:  zapcore.ShortCallerEncoder,
}

func init() {
	SetOutput(os.Stdout)
}

// SetOutput rebuilds the logger so that it writes to w
func SetOutput(w io.Writer) {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoder),
		zapcore.AddSync(w),
		atomicLevel,
	)
	log = zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.ErrorLevel),
	).Sugar()
}

// Init initializes the logger with debug mode
func Init(debug bool) {
	if debug {
		atomicLevel.SetLevel(zap.DebugLevel)
		return
	}
	atomicLevel.SetLevel(zap.InfoLevel)
}

// SetLevel parses level ("debug", "info", "warn", "error") and applies it.
// Unknown levels are ignored.
func SetLevel(level string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return
	}
	atomicLevel.SetLevel(lvl)
}

// IsDebug reports whether debug output is enabled
func IsDebug() bool {
	return atomicLevel.Enabled(zap.DebugLevel)
}

// Debug prints debug messages if debug mode is enabled
func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func Infof(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Warnf(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

// Sync flushes buffered entries
func Sync() {
	_ = log.Sync()
}
