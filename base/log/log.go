package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type (
	Level   string
	OutType int
)

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"

	infoFileOutName  = "service"
	errorFileOutName = "error"

	// ConsoleOut writes to stdout.
	ConsoleOut OutType = 1
	// InfoFileOut writes everything at the active level to a file.
	InfoFileOut OutType = 2
	// ErrorFileOut writes warnings and errors to a separate file.
	ErrorFileOut OutType = 4

	// NormalOut is the usual file pair.
	NormalOut = InfoFileOut | ErrorFileOut
)

var (
	// Builder configures the process-wide logger. Call chain ends with Build;
	// without it a console-only debug logger is active.
	Builder = &builder{logger: &loggerProxy{}}

	levelMapping = map[Level]zapcore.Level{
		LevelDebug: zap.DebugLevel,
		LevelInfo:  zap.InfoLevel,
		LevelWarn:  zap.WarnLevel,
		LevelError: zap.ErrorLevel,
	}

	proxy *loggerProxy
	once  sync.Once
)

type loggerProxy struct {
	name         string
	path         string
	level        Level
	out          OutType
	maxSize      int // megabytes
	maxAge       int // days
	maxBackUps   int
	enableRotate bool

	zapLevel zap.AtomicLevel
	logger   atomic.Value
	dLogger  *zap.SugaredLogger
	nLogger  *zap.SugaredLogger
}

func (lp *loggerProxy) changeLogLevel(level Level, force bool) {
	if !force && levelMapping[level] == lp.zapLevel.Level() {
		return
	}
	if level == LevelDebug {
		lp.zapLevel.SetLevel(zapcore.DebugLevel)
		lp.logger.Store(lp.dLogger)
	} else {
		lp.zapLevel.SetLevel(levelMapping[level])
		lp.logger.Store(lp.nLogger)
	}
}

// ChangeLogLevel switches the active level at runtime.
func ChangeLogLevel(level Level) {
	proxy.changeLogLevel(level, false)
}

// IsDebugEnabled reports whether debug output is active, so callers can
// skip building expensive field sets.
func IsDebugEnabled() bool {
	return proxy.zapLevel.Enabled(zapcore.DebugLevel)
}

type builder struct {
	logger *loggerProxy
}

func (b *builder) Name(name string) *builder {
	b.logger.name = name
	return b
}

func (b *builder) Path(path string) *builder {
	b.logger.path = path
	return b
}

func (b *builder) Level(level Level) *builder {
	b.logger.level = level
	return b
}

func (b *builder) OutType(out OutType) *builder {
	if out <= 0 {
		out = NormalOut
	}
	b.logger.out = out
	return b
}

func (b *builder) MaxSize(size int) *builder {
	b.logger.maxSize = size
	return b
}

func (b *builder) MaxAge(age int) *builder {
	b.logger.maxAge = age
	return b
}

func (b *builder) MaxBackUps(count int) *builder {
	b.logger.maxBackUps = count
	return b
}

func (b *builder) EnableRotate(enable bool) *builder {
	b.logger.enableRotate = enable
	return b
}

func (b *builder) Build() {
	once.Do(func() {
		p := b.logger
		if p.out == 0 {
			p.out = NormalOut
		}
		if p.out&NormalOut > 0 && p.path == "" {
			p.path = "./log"
		}
		if p.path != "" {
			if !exists(p.path) && os.MkdirAll(p.path, 0755) != nil {
				panic("fail to create log directory")
			}
		}
		if p.level == "" {
			p.level = LevelDebug
		}
		p.zapLevel = zap.NewAtomicLevelAt(levelMapping[p.level])

		hp := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.WarnLevel
		})
		all := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			if p.zapLevel.Enabled(zap.DebugLevel) {
				return true
			}
			return lvl > zap.DebugLevel
		})

		cores := make([]zapcore.Core, 0, 1)
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		if p.out&ConsoleOut > 0 {
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), all))
		}
		if p.out&InfoFileOut > 0 {
			filename := lo.Ternary(p.name == "", infoFileOutName, p.name) + ".log"
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(b.getWriter(filename)), all))
		}
		if p.out&ErrorFileOut > 0 {
			filename := lo.Ternary(p.name == "", errorFileOutName,
				p.name+"-"+errorFileOutName) + ".log"
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(b.getWriter(filename)), hp))
		}

		lg := zap.New(zapcore.NewTee(cores...))
		p.logger = atomic.Value{}
		p.nLogger = lg.Sugar()
		// caller info only in debug, it is not free
		p.dLogger = lg.WithOptions(zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
		p.changeLogLevel(p.level, true)
		proxy = p
	})
}

func exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return os.IsExist(err)
	}
	return true
}

func (b *builder) getWriter(name string) io.Writer {
	fullName := filepath.Join(b.logger.path, name)
	if !b.logger.enableRotate {
		f, err := os.OpenFile(fullName, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
		if err != nil {
			panic("fail to open log file")
		}
		return f
	}
	return &lumberjack.Logger{
		Filename:   fullName,
		MaxSize:    b.logger.maxSize,
		MaxAge:     b.logger.maxAge,
		MaxBackups: b.logger.maxBackUps,
	}
}

func Debug(format string, a ...any) {
	proxy.logger.Load().(*zap.SugaredLogger).Debugf(format, a...)
}

func Info(format string, a ...any) {
	proxy.logger.Load().(*zap.SugaredLogger).Infof(format, a...)
}

func Warn(format string, a ...any) {
	proxy.logger.Load().(*zap.SugaredLogger).Warnf(format, a...)
}

func Error(format string, a ...any) {
	proxy.logger.Load().(*zap.SugaredLogger).Errorf(format, a...)
}

func Fatal(format string, a ...any) {
	proxy.logger.Load().(*zap.SugaredLogger).Fatalf(format, a...)
}

func Flush() {
	if proxy.dLogger != nil {
		_ = proxy.dLogger.Sync()
	}
	if proxy.nLogger != nil {
		_ = proxy.nLogger.Sync()
	}
}

func init() {
	// console-only debug logger so tests and examples log without Build
	proxy = &loggerProxy{}
	proxy.zapLevel = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	all := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		if proxy.zapLevel.Enabled(zap.DebugLevel) {
			return true
		}
		return lvl > zap.DebugLevel
	})
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	lg := zap.New(zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), all))
	proxy.nLogger = lg.Sugar()
	proxy.dLogger = lg.WithOptions(zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	proxy.logger = atomic.Value{}
	proxy.logger.Store(proxy.dLogger)
}
