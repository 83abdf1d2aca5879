package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sydlexius/siteassets/internal/logging"
)

type rebuildRecorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *rebuildRecorder) rebuild(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
	return nil
}

func (r *rebuildRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *rebuildRecorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func startService(t *testing.T, svc *Service) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- svc.Start(ctx) }()
	time.Sleep(100 * time.Millisecond) // let watcher initialize
	return cancelFn, ch
}

func TestConfigChangeTriggersRebuild(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "siteassets.yaml")
	if err := os.WriteFile(cfgPath, []byte("output: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &rebuildRecorder{}
	svc := NewService(rec.rebuild, logging.Discard(), 50*time.Millisecond, 0)
	svc.WatchFile(cfgPath)

	cancel, done := startService(t, svc)
	defer cancel()

	if err := os.WriteFile(cfgPath, []byte("output: {icons_dir: x}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got := rec.count(); got != 1 {
		t.Fatalf("expected 1 rebuild, got %d", got)
	}
	if got := rec.last(); len(got) != 1 || got[0] != cfgPath {
		t.Errorf("changed = %v, want [%s]", got, cfgPath)
	}
}

func TestUnrelatedSiblingIgnored(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "siteassets.yaml")

	rec := &rebuildRecorder{}
	svc := NewService(rec.rebuild, logging.Discard(), 50*time.Millisecond, 0)
	svc.WatchFile(cfgPath)

	cancel, done := startService(t, svc)
	defer cancel()

	if err := os.WriteFile(filepath.Join(root, "README.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	if got := rec.count(); got != 0 {
		t.Errorf("expected 0 rebuilds for unrelated file, got %d", got)
	}
}

func TestDirChangesCoalesce(t *testing.T) {
	root := t.TempDir()

	rec := &rebuildRecorder{}
	svc := NewService(rec.rebuild, logging.Discard(), 50*time.Millisecond, 0)
	svc.WatchDir(root)

	cancel, done := startService(t, svc)
	defer cancel()

	for _, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	if got := rec.count(); got != 1 {
		t.Fatalf("expected 1 coalesced rebuild, got %d", got)
	}
	if got := rec.last(); len(got) != 4 {
		t.Errorf("changed = %v, want 4 paths", got)
	}
}

func TestRebuildRateLimited(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "siteassets.yaml")

	rec := &rebuildRecorder{}
	svc := NewService(rec.rebuild, logging.Discard(), 20*time.Millisecond, time.Hour)
	svc.WatchFile(cfgPath)

	cancel, done := startService(t, svc)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(cfgPath, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	cancel()
	<-done

	if got := rec.count(); got != 1 {
		t.Errorf("expected 1 rebuild within the interval, got %d", got)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	svc := NewService((&rebuildRecorder{}).rebuild, logging.Discard(), time.Second, 0)
	svc.WatchDir(root)

	cancel, done := startService(t, svc)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestStartNoWatchablePaths(t *testing.T) {
	svc := NewService((&rebuildRecorder{}).rebuild, logging.Discard(), time.Second, 0)
	svc.WatchDir(filepath.Join(t.TempDir(), "missing"))

	if err := svc.Start(context.Background()); err == nil {
		t.Fatal("expected error when nothing can be watched")
	}
}

func TestSetDebounceFromRebuild(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "siteassets.yaml")

	rec := &rebuildRecorder{}
	var svc *Service
	svc = NewService(func(ctx context.Context, changed []string) error {
		svc.SetDebounce(time.Hour)
		return rec.rebuild(ctx, changed)
	}, logging.Discard(), 50*time.Millisecond, 0)
	svc.WatchFile(cfgPath)

	cancel, done := startService(t, svc)
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := os.WriteFile(cfgPath, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(200 * time.Millisecond)
	}

	cancel()
	<-done

	if got := rec.count(); got != 1 {
		t.Errorf("expected the raised debounce to hold back the second rebuild, got %d rebuilds", got)
	}
}

func TestSetMinIntervalLiftsLimit(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "siteassets.yaml")

	rec := &rebuildRecorder{}
	svc := NewService(rec.rebuild, logging.Discard(), time.Hour, time.Hour)
	svc.SetDebounce(20 * time.Millisecond)
	svc.SetMinInterval(0)
	svc.WatchFile(cfgPath)

	cancel, done := startService(t, svc)
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := os.WriteFile(cfgPath, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(150 * time.Millisecond)
	}

	cancel()
	<-done

	if got := rec.count(); got != 2 {
		t.Errorf("expected 2 rebuilds with no interval, got %d", got)
	}
}
