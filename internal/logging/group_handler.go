package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// GroupOptions configures a GroupHandler.
type GroupOptions struct {
	// Level is the minimum level emitted. Defaults to Info.
	Level slog.Leveler
	// Collapse prints the scope path inline instead of as nested headers.
	Collapse bool
}

// groupOutput is shared by every handler derived from the same root so that
// headers are only printed when the scope actually changes between records.
type groupOutput struct {
	mu   sync.Mutex
	w    io.Writer
	last []string
}

// GroupHandler is a slog.Handler that renders slog groups as nested scopes,
// printing a scope header once and indenting the records logged under it.
type GroupHandler struct {
	out    *groupOutput
	opts   GroupOptions
	groups []string
	attrs  []slog.Attr
}

var _ slog.Handler = (*GroupHandler)(nil)

// NewGroupHandler creates a GroupHandler writing to w.
func NewGroupHandler(w io.Writer, opts *GroupOptions) *GroupHandler {
	h := &GroupHandler{out: &groupOutput{w: w}}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// Enabled implements slog.Handler.
func (h *GroupHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// WithAttrs implements slog.Handler.
func (h *GroupHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	next.attrs = append(next.attrs, attrs...)
	return next
}

// WithGroup implements slog.Handler. Each group opens a new scope.
func (h *GroupHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

// Handle implements slog.Handler.
func (h *GroupHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	h.out.mu.Lock()
	defer h.out.mu.Unlock()

	depth := len(h.groups)
	if h.opts.Collapse {
		if depth > 0 {
			fmt.Fprintf(&b, "[%s] ", strings.Join(h.groups, " > "))
		}
		depth = 0
	} else {
		shared := commonPrefix(h.out.last, h.groups)
		for i := shared; i < len(h.groups); i++ {
			fmt.Fprintf(&b, "%s%s\n", indent(i), h.groups[i])
		}
		h.out.last = append(h.out.last[:0], h.groups...)
		b.WriteString(indent(depth))
	}

	fmt.Fprintf(&b, "%-5s %s", r.Level.String(), r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	_, err := io.WriteString(h.out.w, b.String())
	return err
}

func (h *GroupHandler) clone() *GroupHandler {
	return &GroupHandler{
		out:    h.out,
		opts:   h.opts,
		groups: append([]string(nil), h.groups...),
		attrs:  append([]slog.Attr(nil), h.attrs...),
	}
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	a = replaceAttr(nil, a)
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, sub := range a.Value.Group() {
			sub.Key = a.Key + "." + sub.Key
			writeAttr(b, sub)
		}
		return
	}
	fmt.Fprintf(b, " %s=%v", a.Key, a.Value.Resolve().Any())
}

func commonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
