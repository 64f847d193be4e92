package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cubahno/oascombine/pkg/config"
	"github.com/fsnotify/fsnotify"
	assert2 "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan struct{}, 100)}
}

func (r *fakeRunner) Run(_ context.Context) error {
	r.calls.Add(1)
	r.started <- struct{}{}
	if r.release != nil {
		<-r.release
	}
	return r.err
}

func (r *fakeRunner) waitCalls(t *testing.T, n int32) {
	t.Helper()
	require.Eventually(t, func() bool {
		return r.calls.Load() == n
	}, 2*time.Second, 5*time.Millisecond)
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.NewDefaultConfig(t.TempDir())
}

// startWatcher runs w in the background and returns a function that
// cancels it and checks that Run returned nil.
func startWatcher(t *testing.T, w *Watcher) func() {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	return func() {
		cancel()
		select {
		case err := <-done:
			assert2.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("watcher did not stop")
		}
	}
}

func TestWatcher_Matches(t *testing.T) {
	cfg := newTestConfig(t)
	w, err := New(cfg, newFakeRunner())
	require.NoError(t, err)
	defer w.Stop()

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "fragment", path: "/data/fragment.json", expected: true},
		{name: "nested fragment", path: "/data/documents/list.json", expected: true},
		{name: "combined output", path: "/data/combined-output.json", expected: false},
		{name: "combined in the middle", path: "/data/api-combined.json", expected: false},
		{name: "not json", path: "/data/notes.md", expected: false},
		{name: "swap file", path: "/data/fragment.json.swp", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert2.Equal(t, tt.expected, w.Matches(tt.path))
		})
	}
}

func TestNew(t *testing.T) {
	assert := assert2.New(t)

	t.Run("creates-fragments-dir", func(t *testing.T) {
		cfg := newTestConfig(t)

		w, err := New(cfg, newFakeRunner())
		require.NoError(t, err)
		defer w.Stop()

		info, err := os.Stat(cfg.Paths.Fragments)
		assert.NoError(err)
		assert.True(info.IsDir())
		assert.Equal(StateIdle, w.State())
	})

	t.Run("fragments-dir-is-a-file", func(t *testing.T) {
		cfg := newTestConfig(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Paths.Fragments), 0755))
		require.NoError(t, os.WriteFile(cfg.Paths.Fragments, []byte("x"), 0644))

		_, err := New(cfg, newFakeRunner())
		assert.Error(err)
	})
}

func TestWatcher_Run(t *testing.T) {
	assert := assert2.New(t)

	t.Run("merges-once-at-startup", func(t *testing.T) {
		runner := newFakeRunner()
		w, err := New(newTestConfig(t), runner)
		require.NoError(t, err)

		stop := startWatcher(t, w)
		runner.waitCalls(t, 1)
		stop()

		assert.Equal(StateStopped, w.State())
	})

	t.Run("one-event-one-merge", func(t *testing.T) {
		cfg := newTestConfig(t)
		runner := newFakeRunner()
		w, err := New(cfg, runner)
		require.NoError(t, err)

		stop := startWatcher(t, w)
		defer stop()
		runner.waitCalls(t, 1)

		w.handleEvent(fsnotify.Event{Name: filepath.Join(cfg.Paths.Fragments, "fragment.json"), Op: fsnotify.Write})
		runner.waitCalls(t, 2)

		time.Sleep(50 * time.Millisecond)
		assert.Equal(int32(2), runner.calls.Load())
	})

	t.Run("combined-file-is-ignored", func(t *testing.T) {
		cfg := newTestConfig(t)
		runner := newFakeRunner()
		w, err := New(cfg, runner)
		require.NoError(t, err)

		stop := startWatcher(t, w)
		defer stop()
		runner.waitCalls(t, 1)

		w.handleEvent(fsnotify.Event{Name: filepath.Join(cfg.Paths.Fragments, "combined-output.json"), Op: fsnotify.Write})
		w.handleEvent(fsnotify.Event{Name: filepath.Join(cfg.Paths.Fragments, "fragment.json"), Op: fsnotify.Chmod})

		time.Sleep(50 * time.Millisecond)
		assert.Equal(int32(1), runner.calls.Load())
	})

	t.Run("events-during-merge-coalesce", func(t *testing.T) {
		cfg := newTestConfig(t)
		runner := newFakeRunner()
		runner.release = make(chan struct{})
		w, err := New(cfg, runner)
		require.NoError(t, err)

		stop := startWatcher(t, w)
		defer stop()

		<-runner.started
		assert.Equal(StateMerging, w.State())

		for i := 0; i < 5; i++ {
			w.handleEvent(fsnotify.Event{Name: filepath.Join(cfg.Paths.Fragments, "fragment.json"), Op: fsnotify.Write})
		}
		close(runner.release)

		runner.waitCalls(t, 2)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(int32(2), runner.calls.Load())
		require.Eventually(t, func() bool {
			return w.State() == StateIdle
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("runner-failure-keeps-watching", func(t *testing.T) {
		cfg := newTestConfig(t)
		runner := newFakeRunner()
		runner.err = errors.New("exit status 1")
		w, err := New(cfg, runner)
		require.NoError(t, err)

		stop := startWatcher(t, w)
		defer stop()
		runner.waitCalls(t, 1)

		w.handleEvent(fsnotify.Event{Name: filepath.Join(cfg.Paths.Fragments, "fragment.json"), Op: fsnotify.Remove})
		runner.waitCalls(t, 2)
	})

	t.Run("debounce-groups-bursts", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Watch.Debounce = 30 * time.Millisecond
		runner := newFakeRunner()
		w, err := New(cfg, runner)
		require.NoError(t, err)

		stop := startWatcher(t, w)
		defer stop()
		runner.waitCalls(t, 1)

		for i := 0; i < 3; i++ {
			w.handleEvent(fsnotify.Event{Name: filepath.Join(cfg.Paths.Fragments, "fragment.json"), Op: fsnotify.Write})
		}

		runner.waitCalls(t, 2)
		time.Sleep(100 * time.Millisecond)
		assert.Equal(int32(2), runner.calls.Load())
	})

	t.Run("stops-with-merge-in-flight", func(t *testing.T) {
		runner := newFakeRunner()
		runner.release = make(chan struct{})
		defer close(runner.release)

		w, err := New(newTestConfig(t), runner)
		require.NoError(t, err)

		stop := startWatcher(t, w)
		<-runner.started

		stop()
		assert.Equal(StateStopped, w.State())
	})

	t.Run("stop-returns-run", func(t *testing.T) {
		runner := newFakeRunner()
		w, err := New(newTestConfig(t), runner)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			done <- w.Run(context.Background())
		}()
		runner.waitCalls(t, 1)

		w.Stop()
		w.Stop()

		select {
		case err := <-done:
			assert.NoError(err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after Stop")
		}
	})
}

func TestWatcher_FilesystemEvents(t *testing.T) {
	assert := assert2.New(t)

	cfg := newTestConfig(t)
	subDir := filepath.Join(cfg.Paths.Fragments, "documents")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	runner := newFakeRunner()
	w, err := New(cfg, runner)
	require.NoError(t, err)

	stop := startWatcher(t, w)
	defer stop()
	runner.waitCalls(t, 1)

	require.NoError(t, os.WriteFile(filepath.Join(subDir, "combined.json"), []byte("{}"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(int32(1), runner.calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(subDir, "list.json"), []byte(`{"paths":{}}`), 0644))
	require.Eventually(t, func() bool {
		return runner.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestState_String(t *testing.T) {
	assert := assert2.New(t)

	assert.Equal("idle", StateIdle.String())
	assert.Equal("merging", StateMerging.String())
	assert.Equal("stopped", StateStopped.String())
	assert.Equal("unknown", State(42).String())
}

func TestWatcher_MatchesWithoutExclude(t *testing.T) {
	cfg := newTestConfig(t)
	empty := ""
	cfg.Watch.Exclude = &empty

	w, err := New(cfg, newFakeRunner())
	require.NoError(t, err)
	defer w.Stop()

	assert2.True(t, w.Matches("/data/combined-output.json"))
	assert2.False(t, w.Matches("/data/notes.md"))
}
