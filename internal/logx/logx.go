package logx

import (
	"context"

	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

type contextKey int

const windowKey contextKey = iota

// WithWindow annotates the logger with the window name if present.
func WithWindow(log pslog.Logger, window schema.WindowName) pslog.Logger {
	if window != "" {
		log = log.With("window", window)
	}
	return log
}

// WithTab annotates the logger with window and tab names.
func WithTab(log pslog.Logger, window schema.WindowName, tab schema.TabName) pslog.Logger {
	log = WithWindow(log, window)
	if tab != "" {
		log = log.With("tab", tab)
	}
	return log
}

// WithChannel annotates the logger with a channel id when available.
func WithChannel(log pslog.Logger, channel schema.ChannelID) pslog.Logger {
	if channel != "" {
		log = log.With("channel", channel)
	}
	return log
}

// WithDestination annotates the logger with a destination handle and the
// window/tab it renders.
func WithDestination(log pslog.Logger, dest int, window schema.WindowName, tab schema.TabName) pslog.Logger {
	return WithTab(log.With("dest", dest), window, tab)
}

// WithSource annotates the logger with an ingest source path.
func WithSource(log pslog.Logger, path string) pslog.Logger {
	if path != "" {
		log = log.With("source", path)
	}
	return log
}

// WindowFromContext annotates the context logger with the window name unless
// the context already carries it.
func WindowFromContext(ctx context.Context, window schema.WindowName) pslog.Logger {
	log := pslog.Ctx(ctx)
	if window == "" {
		return log
	}
	if current, ok := ctx.Value(windowKey).(schema.WindowName); ok && current == window {
		return log
	}
	return log.With("window", window)
}

// TabFromContext is WindowFromContext plus the tab name when set.
func TabFromContext(ctx context.Context, window schema.WindowName, tab schema.TabName) pslog.Logger {
	log := WindowFromContext(ctx, window)
	if tab == "" {
		return log
	}
	return log.With("tab", tab)
}

// ContextWithWindow stores the window marker on the context for log de-duplication.
func ContextWithWindow(ctx context.Context, window schema.WindowName) context.Context {
	if ctx == nil || window == "" {
		return ctx
	}
	return context.WithValue(ctx, windowKey, window)
}

// ContextWithWindowLogger attaches the logger and window marker to the context.
func ContextWithWindowLogger(ctx context.Context, log pslog.Logger, window schema.WindowName) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithWindow(ctx, window)
}
