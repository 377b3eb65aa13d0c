// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dropzone

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cobol-lens/pkg/types"
)

// recorder collects gestures from the watcher.
type recorder struct {
	mu      sync.Mutex
	enters  int
	leaves  int
	dropped []string
	content []string
}

func (r *recorder) DragEnter() { r.mu.Lock(); r.enters++; r.mu.Unlock() }
func (r *recorder) DragLeave() { r.mu.Lock(); r.leaves++; r.mu.Unlock() }

func (r *recorder) Drop(f *types.CandidateFile) {
	var body string
	if rc, err := f.Open(); err == nil {
		b, _ := io.ReadAll(rc)
		rc.Close()
		body = string(b)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, f.Name)
	r.content = append(r.content, body)
}

func (r *recorder) snapshot() (enters, leaves int, dropped, content []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enters, r.leaves, append([]string(nil), r.dropped...), append([]string(nil), r.content...)
}

func startWatcher(t *testing.T, dir string, settle time.Duration) *recorder {
	t.Helper()
	rec := &recorder{}
	w, err := New(dir, settle, rec, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-errc, context.Canceled)
	})
	return rec
}

func TestWatcher_DropsSettledFile(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.cob"), []byte("DISPLAY 'HI'."), 0o644))

	require.Eventually(t, func() bool {
		_, _, dropped, _ := rec.snapshot()
		return len(dropped) == 1
	}, 5*time.Second, 10*time.Millisecond)

	enters, leaves, dropped, content := rec.snapshot()
	assert.Equal(t, 1, enters)
	assert.Equal(t, 0, leaves)
	assert.Equal(t, []string{"hello.cob"}, dropped)
	assert.Equal(t, []string{"DISPLAY 'HI'."}, content)
}

func TestWatcher_RemovedBeforeSettle(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, 2*time.Second)

	path := filepath.Join(dir, "draft.cob")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.Eventually(t, func() bool {
		enters, _, _, _ := rec.snapshot()
		return enters == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, leaves, _, _ := rec.snapshot()
		return leaves == 1
	}, 5*time.Second, 10*time.Millisecond)

	_, _, dropped, _ := rec.snapshot()
	assert.Empty(t, dropped)
}

func TestWatcher_IgnoresHiddenAndTempFiles(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hello.cob.swp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.cob~"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		_, _, dropped, _ := rec.snapshot()
		return len(dropped) == 1
	}, 5*time.Second, 10*time.Millisecond)

	enters, _, dropped, _ := rec.snapshot()
	assert.Equal(t, 1, enters)
	assert.Equal(t, []string{"report.txt"}, dropped)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), time.Second, &recorder{}, nil)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(file, time.Second, &recorder{}, nil)
	assert.ErrorContains(t, err, "not a directory")
}

func TestIgnored(t *testing.T) {
	assert.True(t, ignored(".DS_Store"))
	assert.True(t, ignored("prog.cob~"))
	assert.False(t, ignored("prog.cob"))
}
