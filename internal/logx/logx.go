package logx

import (
	"log/slog"
	"os"
	"strings"
)

// Init sets the default slog logger to a JSON handler tagged with the
// service name. Level parsing is forgiving; anything unknown means info.
func Init(service, level string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	l := slog.New(h).With("service", service)
	slog.SetDefault(l)
	return l
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
