package log

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var logger zerolog.Logger
var once sync.Once

type LoggerOption func(*LoggerConfig)

type LoggerConfig struct {
	fileName string
	console  bool
	logLevel int
}

func WithFileLogger(fileName string) LoggerOption {
	return func(l *LoggerConfig) {
		l.fileName = fileName
	}
}

func WithConsoleLogger() LoggerOption {
	return func(l *LoggerConfig) {
		l.console = true
	}
}

func WithLogLevel(logLevel int) LoggerOption {
	return func(l *LoggerConfig) {
		l.logLevel = logLevel
	}
}

// WithLevelName sets the level from its textual name (debug, info, warn, error).
// Unknown names keep the info default.
func WithLevelName(name string) LoggerOption {
	return func(l *LoggerConfig) {
		level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
		if err != nil || level == zerolog.NoLevel {
			return
		}
		l.logLevel = int(level)
	}
}

// Init configures the process-wide logger. Only the first call has effect.
func Init(serviceName string, opts ...LoggerOption) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := &LoggerConfig{}
		l.logLevel = int(zerolog.InfoLevel)

		for _, opt := range opts {
			opt(l)
		}

		output := make([]io.Writer, 0, 2)
		defaultOutput := os.Stdout
		if l.console {
			consoleOutput := zerolog.ConsoleWriter{
				Out:        defaultOutput,
				TimeFormat: time.RFC3339,
			}
			output = append(output, consoleOutput)
		}
		if l.fileName != "" {
			fileOutput := &lumberjack.Logger{
				Filename:   l.fileName,
				MaxSize:    5,
				MaxBackups: 10,
				MaxAge:     14,
				Compress:   true,
			}
			output = append(output, fileOutput)
		}

		if len(output) == 0 {
			output = append(output, defaultOutput)
		}

		multiWriter := zerolog.MultiLevelWriter(output...)

		logger = zerolog.New(multiWriter).
			Level(zerolog.Level(l.logLevel)).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	})
}

// GetLogger returns a copy of the process-wide logger. Before Init it is a
// disabled logger, which keeps packages usable in tests.
func GetLogger() zerolog.Logger {
	return logger
}
