// Package logs builds the process logger.
package logs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

type playerKey struct{}

// WithPlayer tags records logged with ctx with a player session id.
func WithPlayer(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, playerKey{}, id)
}

// Handler gates records by level and adds the player id from the context.
type Handler struct {
	slog.Handler
	level slog.Leveler
}

func (h *Handler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.Handler.Enabled(ctx, l)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if v, ok := ctx.Value(playerKey{}).(string); ok && v != "" {
		record.Add("player", v)
	}
	return h.Handler.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name), level: h.level}
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// New returns a logger writing text to w unless running as a systemd
// service, fanned out with the systemd journal when it is reachable.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(&Handler{
		Handler: slogmulti.Fanout(handlers(w, level, isSystemdService(), newJournalHandler)...),
		level:   level,
	})
}

func handlers(w io.Writer, level slog.Leveler, service bool, journal func() (slog.Handler, error)) []slog.Handler {
	var out []slog.Handler

	// local
	var terminalHandler slog.Handler
	if !service {
		terminalHandler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		out = append(out, terminalHandler)
	}

	// systemd journal
	journalHandler, err := journal()
	if err != nil {
		if terminalHandler != nil && terminalHandler.Enabled(context.Background(), slog.LevelDebug) {
			record := slog.NewRecord(time.Now(), slog.LevelDebug, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminalHandler.Handle(context.Background(), record)
		}
		return out
	}
	return append(out, journalHandler)
}

func newJournalHandler() (slog.Handler, error) {
	return slogjournal.NewHandler(&slogjournal.Options{
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}

func isSystemdService() bool {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) < 3 {
		return false
	}
	return strings.HasSuffix(path.Dir(parts[2]), ".service")
}
