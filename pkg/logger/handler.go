package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a record's context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextHandler runs extractors at Handle time, so values stored in the
// context after the logger was built still show up.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func newContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	if len(extractors) == 0 {
		return next
	}
	return &contextHandler{next: next, extractors: extractors}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		for _, ex := range h.extractors {
			if attr, ok := ex(ctx); ok {
				rec.AddAttrs(attr)
			}
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

type flowIDKey struct{}

// WithFlowID stores an approval flow id in ctx. Loggers built by New attach it
// to every record as "flow_id".
func WithFlowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, flowIDKey{}, id)
}

// FlowID returns the flow id stored in ctx, if any.
func FlowID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(flowIDKey{}).(string)
	return id, ok && id != ""
}

func flowIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := FlowID(ctx); ok {
		return slog.String("flow_id", id), true
	}
	return slog.Attr{}, false
}
