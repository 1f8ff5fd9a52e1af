package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/chansync/internal/format"
	"pkt.systems/chansync/internal/logx"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

const tailDebounce = 50 * time.Millisecond

// tailer follows one file, re-reading after writes and reopening after the
// file is truncated or replaced.
type tailer struct {
	pump    *Pump
	log     pslog.Logger
	channel schema.ChannelID
	path    string
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	partial strings.Builder
}

// Tail reads path into channel from the start and keeps following it as it
// grows. The parent directory is watched so rotation is picked up.
func (p *Pump) Tail(ctx context.Context, channel schema.ChannelID, path string) error {
	path = filepath.Clean(path)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tail %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return fmt.Errorf("tail %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		file.Close()
		return fmt.Errorf("tail %s: %w", path, err)
	}
	if !p.start() {
		watcher.Close()
		file.Close()
		return ErrClosed
	}
	t := &tailer{
		pump:    p,
		log:     logx.WithSource(logx.WithChannel(p.log, channel), path),
		channel: channel,
		path:    path,
		file:    file,
		reader:  bufio.NewReader(file),
	}
	go func() {
		defer p.wg.Done()
		defer watcher.Close()
		defer func() { t.file.Close() }()
		t.loop(ctx, watcher)
	}()
	return nil
}

func (t *tailer) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	if !t.drain(ctx) {
		return
	}
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.pump.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != t.path {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				t.reopen()
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(tailDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			t.checkTruncate()
			if !t.drain(ctx) {
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			t.log.Warn("ingest watch error", "err", err)
		}
	}
}

// drain reads every complete line currently available and sends it. A
// trailing fragment without newline waits for the next write.
func (t *tailer) drain(ctx context.Context) bool {
	var pending []schema.Line
	for {
		chunk, err := t.reader.ReadString('\n')
		t.offset += int64(len(chunk))
		if strings.HasSuffix(chunk, "\n") {
			t.partial.WriteString(strings.TrimSuffix(chunk, "\n"))
			pending = append(pending, format.Plain(t.channel, t.partial.String()))
			t.partial.Reset()
		} else {
			t.partial.WriteString(chunk)
		}
		if len(pending) >= t.pump.maxBatch || (err != nil && len(pending) > 0) {
			if !t.pump.send(ctx, Batch{Channel: t.channel, Lines: pending, Source: t.path}) {
				return false
			}
			pending = nil
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.log.Warn("ingest tail read failed", "err", err)
			}
			return true
		}
	}
}

func (t *tailer) checkTruncate() {
	info, err := t.file.Stat()
	if err != nil || info.Size() >= t.offset {
		return
	}
	t.log.Debug("ingest tail truncated", "size", info.Size(), "offset", t.offset)
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		t.log.Warn("ingest tail seek failed", "err", err)
		return
	}
	t.reader.Reset(t.file)
	t.offset = 0
	t.partial.Reset()
}

func (t *tailer) reopen() {
	file, err := os.Open(t.path)
	if err != nil {
		t.log.Warn("ingest tail reopen failed", "err", err)
		return
	}
	t.file.Close()
	t.file = file
	t.reader.Reset(file)
	t.offset = 0
	t.partial.Reset()
	t.log.Debug("ingest tail reopened")
}
