package main

import (
	"io"
	"log/slog"
	"os"

	"soundboard-bot/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger installs the default slog logger. When cfg names a log file,
// output is duplicated into a rotating file whose closer is returned.
func InitLogger(cfg *config.Config) io.Closer {
	level := slog.LevelInfo
	var out io.Writer = os.Stdout
	var closer io.Closer

	if cfg != nil {
		if l, err := cfg.SlogLevel(); err == nil {
			level = l
		}
		if cfg.LogFile != "" {
			file := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    10,
				MaxBackups: 5,
				MaxAge:     30,
				Compress:   true,
			}
			out = io.MultiWriter(os.Stdout, file)
			closer = file
		}
	}

	slog.SetDefault(slog.New(newLogHandler(out, level)))
	return closer
}

func newLogHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}
