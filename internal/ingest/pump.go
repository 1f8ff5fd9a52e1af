// Package ingest reads producer text on background goroutines and hands it to
// the render goroutine in batches.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"pkt.systems/chansync/internal/format"
	"pkt.systems/chansync/internal/logx"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

// ErrClosed is returned when a source is added to a closed pump.
var ErrClosed = errors.New("ingest pump closed")

// Batch is a run of lines for one channel read in a single pass.
type Batch struct {
	Channel schema.ChannelID
	Lines   []schema.Line
	Source  string
}

// Pump runs readers and tailers and delivers their lines on Batches.
type Pump struct {
	log      pslog.Logger
	out      chan Batch
	done     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	maxBatch int
}

// New constructs a Pump.
func New(logger pslog.Logger) *Pump {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Pump{
		log:      logger,
		out:      make(chan Batch, 64),
		done:     make(chan struct{}),
		maxBatch: 256,
	}
}

// Batches returns the channel batches arrive on. It is closed by Close.
func (p *Pump) Batches() <-chan Batch {
	return p.out
}

// ReadFrom reads lines from r into channel until EOF, ctx is done or the pump
// closes. Lines already buffered are sent together.
func (p *Pump) ReadFrom(ctx context.Context, channel schema.ChannelID, r io.Reader) error {
	if !p.start() {
		return ErrClosed
	}
	log := logx.WithChannel(p.log, channel)
	go func() {
		defer p.wg.Done()
		reader := bufio.NewReader(r)
		var pending []schema.Line
		for {
			text, err := reader.ReadString('\n')
			if text != "" {
				pending = append(pending, format.Plain(channel, strings.TrimSuffix(text, "\n")))
			}
			if len(pending) > 0 && (err != nil || reader.Buffered() == 0 || len(pending) >= p.maxBatch) {
				if !p.send(ctx, Batch{Channel: channel, Lines: pending}) {
					return
				}
				pending = nil
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.Warn("ingest read failed", "err", err)
				}
				log.Debug("ingest reader finished")
				return
			}
		}
	}()
	return nil
}

// Close stops every source and closes Batches.
func (p *Pump) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
	close(p.out)
	return nil
}

// Finish rejects new sources, waits for the running ones to end on their own
// and then closes Batches. Batches must be drained concurrently. Tailers only
// end when their context is done.
func (p *Pump) Finish() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
	close(p.out)
}

func (p *Pump) start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.wg.Add(1)
	return true
}

func (p *Pump) send(ctx context.Context, batch Batch) bool {
	select {
	case p.out <- batch:
		return true
	case <-ctx.Done():
		return false
	case <-p.done:
		return false
	}
}
