package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_HandlesNewAudioFiles(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []string
	handled := make(chan struct{}, 4)
	handler := func(ctx context.Context, path string) error {
		mu.Lock()
		seen = append(seen, filepath.Base(path))
		mu.Unlock()
		handled <- struct{}{}
		return errors.New("handler errors are only logged")
	}

	w, err := New(dir, handler, nil, 1)
	require.NoError(t, err)
	defer w.Stop()
	w.SetSettleDelay(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lecture.mp3"), []byte("x"), 0644))

	select {
	case <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("audio file was not handled")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"lecture.mp3"}, seen)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), nil, nil, 0)
	assert.Error(t, err)
}
