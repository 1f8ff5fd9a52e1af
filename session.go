// Package chansync composes the channel-log core with its input sources,
// event bus and command handler.
package chansync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"pkt.systems/chansync/core"
	"pkt.systems/chansync/internal/appconfig"
	"pkt.systems/chansync/internal/command"
	"pkt.systems/chansync/internal/eventbus"
	"pkt.systems/chansync/internal/ingest"
	"pkt.systems/chansync/internal/logx"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

// Session owns one core and everything that feeds or observes it.
type Session interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Core() *core.Core
	Commands() *command.Handler
	Batches() <-chan ingest.Batch
	Subscribe(window schema.WindowName) (<-chan eventbus.Event, func())
	Apply(batch ingest.Batch)
}

// SessionConfig configures a session.
type SessionConfig struct {
	Core                schema.CoreConfig
	Sources             []Source
	StatusChannel       schema.ChannelID
	DisableAuditLogging bool
	EchoCommands        bool
}

// Source feeds one channel from a tailed file or a reader.
type Source struct {
	Channel schema.ChannelID
	Path    string
	Reader  io.Reader
}

// SessionDeps captures dependencies required to build a session.
type SessionDeps struct {
	Logger pslog.Logger
	Now    func() time.Time
	Sinks  []core.EventSink
	Stdin  io.Reader
}

type session struct {
	cfg      SessionConfig
	log      pslog.Logger
	core     *core.Core
	bus      *eventbus.Bus
	pump     *ingest.Pump
	commands *command.Handler

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// NewSession builds the core from cfg and wires the event bus, ingest pump
// and command handler around it. Sources start with Start.
func NewSession(cfg SessionConfig, deps SessionDeps) (Session, error) {
	log := deps.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	for i, src := range cfg.Sources {
		if (src.Path == "") == (src.Reader == nil) {
			return nil, fmt.Errorf("source %d (%s): exactly one of path or reader is required", i, src.Channel)
		}
	}
	bus := eventbus.New(log)
	c, err := core.New(cfg.Core, core.Deps{
		EventSink: newEventFanout(append([]core.EventSink{bus}, deps.Sinks...)...),
		Logger:    log,
		Now:       deps.Now,
	})
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:  cfg,
		log:  log,
		core: c,
		bus:  bus,
		pump: ingest.New(log),
		commands: command.NewHandler(c, command.HandlerConfig{
			StatusChannel:       cfg.StatusChannel,
			DisableAuditLogging: cfg.DisableAuditLogging,
			EchoCommands:        cfg.EchoCommands,
		}),
	}, nil
}

// SessionConfigFromApp maps the file configuration onto a session config.
// Stdin sources read from stdin.
func SessionConfigFromApp(cfg appconfig.Config, stdin io.Reader) (SessionConfig, error) {
	coreCfg, err := cfg.ToCoreConfig()
	if err != nil {
		return SessionConfig{}, err
	}
	out := SessionConfig{Core: coreCfg, EchoCommands: cfg.UI.EchoCommands}
	for _, src := range cfg.Sources {
		source := Source{Channel: schema.ChannelID(src.Channel), Path: src.Path}
		if src.Stdin {
			if stdin == nil {
				return SessionConfig{}, fmt.Errorf("source %s: stdin is not available", src.Channel)
			}
			source.Path = ""
			source.Reader = stdin
		}
		out.Sources = append(out.Sources, source)
	}
	return out, nil
}

// Start launches every configured source. Sources stop when ctx is done or
// the session stops.
func (s *session) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("session already started")
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	for _, src := range s.cfg.Sources {
		log := logx.WithSource(logx.WithChannel(s.log, src.Channel), src.Path)
		var err error
		if src.Reader != nil {
			err = s.pump.ReadFrom(ctx, src.Channel, src.Reader)
		} else {
			err = s.pump.Tail(ctx, src.Channel, src.Path)
		}
		if err != nil {
			log.Error("session source failed", "err", err)
			s.cancel()
			_ = s.pump.Close()
			return fmt.Errorf("source %s: %w", src.Channel, err)
		}
		log.Info("session source started")
	}
	s.log.Info("session started", "sources", len(s.cfg.Sources), "windows", len(s.core.Windows()))
	return nil
}

// Stop cancels every source and closes Batches.
func (s *session) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	done := make(chan struct{})
	go func() {
		_ = s.pump.Close()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("session stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *session) Core() *core.Core {
	return s.core
}

func (s *session) Commands() *command.Handler {
	return s.commands
}

func (s *session) Batches() <-chan ingest.Batch {
	return s.pump.Batches()
}

func (s *session) Subscribe(window schema.WindowName) (<-chan eventbus.Event, func()) {
	return s.bus.Subscribe(window)
}

// Apply appends a batch to the core. Like every core call it must run on the
// rendering goroutine.
func (s *session) Apply(batch ingest.Batch) {
	for _, line := range batch.Lines {
		s.core.Append(batch.Channel, line)
	}
}
