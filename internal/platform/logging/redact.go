package logging

import (
	"context"
	"log/slog"
	"regexp"
	"slices"

	"github.com/m-mizutani/masq"
)

// Values masked wherever they appear, whatever the attribute is called.
var (
	authHeaderPattern = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)
	jwtPattern        = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)
	urlUserPattern    = regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^/\s:@]+:[^/\s@]+@`)
)

var sensitiveFields = []string{
	"password",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"cookie",
	"dsn",
}

// ReplaceAttr is the signature of slog.HandlerOptions.ReplaceAttr.
type ReplaceAttr func(groups []string, a slog.Attr) slog.Attr

// Redactor returns a ReplaceAttr masking credentials: attributes named like
// secrets, any key starting with "secret", auth header values, JWTs, and URLs
// with embedded user info such as a postgres DSN. extra extends the rules.
func Redactor(extra ...masq.Option) ReplaceAttr {
	opts := make([]masq.Option, 0, len(sensitiveFields)+4+len(extra))

	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	opts = append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(authHeaderPattern),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(urlUserPattern),
	)

	return masq.New(append(opts, extra...)...)
}

// redacting applies a ReplaceAttr in front of a handler that has no hook of
// its own, such as the pretty console handler.
type redacting struct {
	next    slog.Handler
	replace ReplaceAttr
	groups  []string
}

func (h *redacting) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

//nolint:gocritic // slog.Handler passes records by value
func (h *redacting) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.replace(h.groups, a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *redacting) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.replace(h.groups, a)
	}

	return &redacting{next: h.next.WithAttrs(masked), replace: h.replace, groups: h.groups}
}

func (h *redacting) WithGroup(name string) slog.Handler {
	return &redacting{
		next:    h.next.WithGroup(name),
		replace: h.replace,
		groups:  append(slices.Clip(h.groups), name),
	}
}
