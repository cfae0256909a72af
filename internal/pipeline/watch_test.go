package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosbuild/composer/internal/testutil"
)

func TestWatchCallsOnChange(t *testing.T) {
	path := testutil.WriteSystem(t, testutil.CapmgrSystem)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func() { changes <- struct{}{} })
	}()

	// Give the watcher time to register, then write until it notices.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	seen := false
	for !seen {
		select {
		case <-changes:
			seen = true
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte(testutil.SchedulerSystem), 0o644))
		case <-deadline:
			t.Fatal("no change observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	path := testutil.WriteSystem(t, testutil.CapmgrSystem)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	calls := 0
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(filepath.Dir(path), "other.toml"), []byte("x"), 0o644)
	}()

	require.NoError(t, Watch(ctx, path, 10*time.Millisecond, func() { calls++ }))
	assert.Zero(t, calls)
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "gone", "system.toml"), DefaultDebounce, func() {})
	assert.Error(t, err)
}
