package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化参数，由 config.LogConfig.ToLogOption 转换而来
type LogOption struct {
	Format   string // "console" 或 "json"
	LogDir   string // 日志目录，为空时只输出到 stderr
	Level    string // debug / info / warn / error
	Compress bool   // 是否压缩轮转后的旧日志
}

const (
	logFileName   = "app.log"
	maxSizeMB     = 200
	maxBackups    = 10
	maxAgeDays    = 7
	callerSkipNum = 1
)

var current atomic.Pointer[zap.SugaredLogger]

func init() {
	// Init 之前使用 stderr 控制台日志，保证库代码随时可以打日志
	core := zapcore.NewCore(newEncoder("console"), zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	current.Store(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(callerSkipNum)).Sugar())
}

// Init 按配置初始化全局日志，重复调用会替换之前的 logger
func Init(opt LogOption) error {
	level, err := parseLevel(opt.Level)
	if err != nil {
		return err
	}

	writers := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log dir %s: %w", opt.LogDir, err)
		}
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, logFileName),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   opt.Compress,
			LocalTime:  true,
		}))
	}

	core := zapcore.NewCore(newEncoder(opt.Format), zapcore.NewMultiWriteSyncer(writers...), level)
	old := current.Swap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(callerSkipNum)).Sugar())
	if old != nil {
		_ = old.Sync()
	}
	return nil
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Sync 刷新缓冲，进程退出前调用
func Sync() {
	_ = current.Load().Sync()
}

func Debugf(format string, args ...any) {
	current.Load().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	current.Load().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	current.Load().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	current.Load().Errorf(format, args...)
}
