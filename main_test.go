package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

type countingInterrupter struct {
	calls chan struct{}
}

func (c *countingInterrupter) Interrupt() {
	c.calls <- struct{}{}
}

func TestWatchSignalsInterruptsOnSignal(t *testing.T) {
	p := &countingInterrupter{calls: make(chan struct{}, 1)}
	sigCh := make(chan os.Signal, 1)
	returned := make(chan struct{})
	go func() {
		watchSignals(p, sigCh, make(chan struct{}), slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(returned)
	}()

	sigCh <- syscall.SIGTERM
	select {
	case <-p.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Interrupt on signal")
	}
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not return after the signal")
	}
}

func TestWatchSignalsReturnsWhenTrackingStops(t *testing.T) {
	p := &countingInterrupter{calls: make(chan struct{}, 1)}
	done := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		watchSignals(p, make(chan os.Signal), done, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(returned)
	}()

	close(done)
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher kept waiting after tracking stopped")
	}
	if len(p.calls) != 0 {
		t.Fatal("Interrupt must not be called without a signal")
	}
}

func TestDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := openDataDir()
	if err != nil {
		t.Fatalf("open data dir: %v", err)
	}
	if string(dir) != filepath.Join(home, ".keyinvader") {
		t.Fatalf("unexpected data dir %q", dir)
	}
	if _, err := openDataDir(); err != nil {
		t.Fatalf("reopen existing data dir: %v", err)
	}

	logger, logFile, err := dir.logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("hello")
	logFile.Close()
	b, err := os.ReadFile(dir.path("log.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("expected JSON log line, got %q", b)
	}

	db, err := dir.openDB()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.Close()

	mux, err := dir.fileMutex()
	if err != nil {
		t.Fatalf("file mutex: %v", err)
	}
	mux.Close()
}

func TestDataDirReportsErrors(t *testing.T) {
	home := t.TempDir()
	// A file where the data directory should go.
	if err := os.WriteFile(filepath.Join(home, ".keyinvader"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)

	if _, err := openDataDir(); err == nil {
		t.Fatal("expected error when the data directory cannot be created")
	}
}
