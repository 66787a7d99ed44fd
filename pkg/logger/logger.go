package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Badsnus/qr-studio/pkg/logger/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *types.Logger

// Config represents configuration options for logger initialization
type Config struct {
	Debug        bool           // Enable debug logging
	TimeLocation *time.Location // Set the time zone (default: UTC)
	LogToFile    bool           // Enable logging to a file
	LogsDir      string         // Relative to the working directory unless absolute
}

// Init builds the global logger: colored console output, plus a JSON file
// per run when LogToFile is set.
func Init(config Config) error {
	location := config.TimeLocation
	if location == nil {
		location = time.UTC
	}

	level := zapcore.InfoLevel
	if config.Debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := newEncoderConfig(location)

	consoleEncoderConfig := encoderConfig
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.Lock(os.Stdout), level),
	}

	if config.LogToFile {
		fileWriter, err := openLogFile(config.LogsDir, location)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(fileWriter), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Log = &types.Logger{
		SugaredLogger: log.Named("main").Sugar(),
		Name:          "main",
	}
	return nil
}

func newEncoderConfig(location *time.Location) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.In(location).Format("2006-01-02 15:04:05"))
		},
	}
}

func openLogFile(dir string, location *time.Location) (*os.File, error) {
	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(wd, dir)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().In(location).Format("2006-01-02_15-04")))
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Named returns a new logger with the specified name ("session", "ingest", etc.)
func Named(name string) (*types.Logger, error) {
	if Log == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &types.Logger{
		SugaredLogger: Log.SugaredLogger.Named(name),
		Name:          name,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *types.Logger {
	return &types.Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		Name:          "nop",
	}
}
