package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dfryer1193/folio/internal/config"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logDir = "logs"

// Init configures the global zerolog logger. LOG=dev writes human readable output to
// stderr; otherwise JSON goes to stdout and to a rotated file under logs/.
func Init(cfg *config.Config) error {
	zerolog.SetGlobalLevel(ParseLevel(cfg.LogLevel))
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Log == "dev" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Caller().Logger()
		return nil
	}

	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return err
	}

	log.Logger = zerolog.New(io.MultiWriter(os.Stdout, rotatingFile(filepath.Join(logDir, "app.log")))).
		With().Timestamp().Logger()
	return nil
}

func rotatingFile(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     7,
		Compress:   true,
	}
}

func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
