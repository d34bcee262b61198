// Package logging builds the slog loggers used by the command line.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// PrettyHandlerOptions configures a PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
	NoColor  bool
}

// PrettyHandler writes one human readable line per record:
//
//	[15:04:05.000] INFO: message {"key":"value"}
type PrettyHandler struct {
	opts   PrettyHandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// NewPrettyHandler returns a handler writing to out.
func NewPrettyHandler(out io.Writer, opts PrettyHandlerOptions) *PrettyHandler {
	return &PrettyHandler{opts: opts, out: out, mu: &sync.Mutex{}}
}

// Enabled reports whether level passes the configured minimum.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minimum := slog.LevelInfo
	if h.opts.SlogOpts.Level != nil {
		minimum = h.opts.SlogOpts.Level.Level()
	}
	return level >= minimum
}

// Handle formats and writes a record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		addAttr(fields, attr)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(attr slog.Attr) bool {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		addAttr(fields, attr)
		return true
	})
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode log attributes: %w", err)
	}

	level := h.paint(levelColor(r.Level), r.Level.String()+":")
	line := fmt.Sprintf("%s %s %s %s\n",
		r.Time.Format("[15:04:05.000]"),
		level,
		h.paint(color.FgCyan, r.Message),
		h.paint(color.FgWhite, string(encoded)),
	)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = io.WriteString(h.out, line)
	return err
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup returns a handler that prefixes record attribute keys.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func (h *PrettyHandler) paint(attr color.Attribute, text string) string {
	if h.opts.NoColor {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}

func levelColor(level slog.Level) color.Attribute {
	switch {
	case level >= slog.LevelError:
		return color.FgRed
	case level >= slog.LevelWarn:
		return color.FgYellow
	case level >= slog.LevelInfo:
		return color.FgBlue
	default:
		return color.FgMagenta
	}
}

func addAttr(fields map[string]any, attr slog.Attr) {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		group := map[string]any{}
		for _, inner := range value.Group() {
			addAttr(group, inner)
		}
		fields[attr.Key] = group
		return
	}
	if err, ok := value.Any().(error); ok {
		fields[attr.Key] = err.Error()
		return
	}
	fields[attr.Key] = value.Any()
}
