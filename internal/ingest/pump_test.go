package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func collect(t *testing.T, p *Pump, want int) []string {
	t.Helper()
	var got []string
	deadline := time.After(3 * time.Second)
	for len(got) < want {
		select {
		case batch, ok := <-p.Batches():
			if !ok {
				t.Fatalf("batches closed after %d lines", len(got))
			}
			for _, line := range batch.Lines {
				if line.Channel != batch.Channel {
					t.Fatalf("line channel %q differs from batch %q", line.Channel, batch.Channel)
				}
				got = append(got, line.Text())
			}
		case <-deadline:
			t.Fatalf("timed out after %d of %d lines: %q", len(got), want, got)
		}
	}
	return got
}

func TestReadFromBatchesBufferedLines(t *testing.T) {
	p := New(nil)
	defer p.Close()
	if err := p.ReadFrom(context.Background(), "main", strings.NewReader("one\ntwo\r\n\x1b[1mthree\x1b[0m")); err != nil {
		t.Fatalf("read from: %v", err)
	}
	select {
	case batch := <-p.Batches():
		if batch.Channel != "main" || len(batch.Lines) != 3 {
			t.Fatalf("expected one batch of 3 lines, got %+v", batch)
		}
		if batch.Lines[1].Text() != "two" || batch.Lines[2].Text() != "three" {
			t.Fatalf("unexpected sanitized lines: %q %q", batch.Lines[1].Text(), batch.Lines[2].Text())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for batch")
	}
}

func TestTailFollowsAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.log")
	if err := os.WriteFile(path, []byte("first\nsecond\npart"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := New(nil)
	defer p.Close()
	if err := p.Tail(context.Background(), "game", path); err != nil {
		t.Fatalf("tail: %v", err)
	}
	got := collect(t, p, 2)
	if got[0] != "first" || got[1] != "second" {
		t.Fatalf("unexpected initial lines: %q", got)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("ial\nthird\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	got = collect(t, p, 2)
	if got[0] != "partial" || got[1] != "third" {
		t.Fatalf("unexpected appended lines: %q", got)
	}
}

func TestTailMissingFile(t *testing.T) {
	p := New(nil)
	defer p.Close()
	if err := p.Tail(context.Background(), "game", filepath.Join(t.TempDir(), "missing.log")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCloseClosesBatchesAndRejectsSources(t *testing.T) {
	p := New(nil)
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer w.Close()
	if err := p.ReadFrom(context.Background(), "main", r); err != nil {
		t.Fatalf("read from: %v", err)
	}
	if _, err := w.WriteString("hello\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	collect(t, p, 1)
	r.Close()
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-p.Batches(); ok {
		t.Fatalf("expected batches to be closed")
	}
	if err := p.ReadFrom(context.Background(), "main", strings.NewReader("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestFinishClosesBatchesAfterReaders(t *testing.T) {
	p := New(nil)
	var input strings.Builder
	for i := 0; i < 1000; i++ {
		input.WriteString("line\n")
	}
	if err := p.ReadFrom(context.Background(), "main", strings.NewReader(input.String())); err != nil {
		t.Fatalf("read from: %v", err)
	}
	go p.Finish()
	total := 0
	timeout := time.After(3 * time.Second)
	for {
		select {
		case batch, ok := <-p.Batches():
			if !ok {
				if total != 1000 {
					t.Fatalf("expected 1000 lines before close, got %d", total)
				}
				if err := p.ReadFrom(context.Background(), "main", strings.NewReader("x\n")); !errors.Is(err, ErrClosed) {
					t.Fatalf("expected ErrClosed after finish, got %v", err)
				}
				return
			}
			total += len(batch.Lines)
		case <-timeout:
			t.Fatalf("timed out with %d lines", total)
		}
	}
}
