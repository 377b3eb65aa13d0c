// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cobol-lens/internal/controller"
	"github.com/pdiddy/cobol-lens/internal/logging"
	"github.com/pdiddy/cobol-lens/internal/stubserver"
	"github.com/pdiddy/cobol-lens/internal/terminal"
	"github.com/pdiddy/cobol-lens/internal/transport"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

const (
	waitFor = 5 * time.Second
	settle  = 30 * time.Millisecond
)

// recordingNavigator records every target. The first navigation can be
// made to fail or to wait for gate.
type recordingNavigator struct {
	mu        sync.Mutex
	calls     int
	failFirst bool
	gate      chan struct{}
	targets   chan string
}

func newRecordingNavigator() *recordingNavigator {
	return &recordingNavigator{targets: make(chan string, 8)}
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	n.calls++
	first := n.calls == 1
	n.mu.Unlock()

	n.targets <- target
	if first && n.gate != nil {
		<-n.gate
	}
	if first && n.failFirst {
		return errors.New("no browser")
	}
	return nil
}

func (n *recordingNavigator) next(t *testing.T) string {
	t.Helper()
	select {
	case target := <-n.targets:
		return target
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a navigation")
		return ""
	}
}

func testApp(t *testing.T, nav controller.Navigator) *app {
	t.Helper()
	ts := httptest.NewServer(stubserver.New().Handler())
	t.Cleanup(ts.Close)

	cfg := types.DefaultConfig()
	cfg.Endpoint = ts.URL
	cfg.ProgressInterval = 5 * time.Millisecond
	cfg.WatchSettle = settle

	return &app{
		cfg:    cfg,
		log:    logging.Discard(),
		client: transport.New(ts.Client(), cfg.HTTPConfig),
		term:   terminal.New(io.Discard, strings.NewReader(""), false),
		nav:    nav,
	}
}

// startWatch runs the watch loop on dir and returns its outcomes and a
// stop function that cancels it and returns the loop's error.
func startWatch(t *testing.T, a *app, dir string) (<-chan controller.Outcome, func() error) {
	t.Helper()
	outcomes := make(chan controller.Outcome, 8)
	run, err := watch(a, dir, func(o controller.Outcome) { outcomes <- o })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- run(ctx) }()
	t.Cleanup(cancel)

	return outcomes, func() error {
		cancel()
		select {
		case err := <-errc:
			return err
		case <-time.After(waitFor):
			t.Fatal("watch did not stop")
			return nil
		}
	}
}

func nextOutcome(t *testing.T, outcomes <-chan controller.Outcome) controller.Outcome {
	t.Helper()
	select {
	case o := <-outcomes:
		return o
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for an outcome")
		return controller.Outcome{}
	}
}

func dropFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("       PROCEDURE DIVISION.\n"), 0o644))
}

func TestWatch_SubmitsEachDroppedFile(t *testing.T) {
	dir := t.TempDir()
	nav := newRecordingNavigator()
	outcomes, stop := startWatch(t, testApp(t, nav), dir)

	dropFile(t, dir, "first.cob")
	first := nextOutcome(t, outcomes)
	assert.Equal(t, controller.OutcomeNavigated, first.Kind)
	assert.Equal(t, "first.cob", first.File)

	dropFile(t, dir, "second.txt")
	second := nextOutcome(t, outcomes)
	assert.Equal(t, controller.OutcomeNavigated, second.Kind)
	assert.Equal(t, "second.txt", second.File)

	assert.NotEqual(t, nav.next(t), nav.next(t), "each upload gets its own conversion")
	assert.NoError(t, stop())
}

func TestWatch_ContinuesAfterNavigationError(t *testing.T) {
	dir := t.TempDir()
	nav := newRecordingNavigator()
	nav.failFirst = true
	outcomes, stop := startWatch(t, testApp(t, nav), dir)

	dropFile(t, dir, "first.cob")
	o := nextOutcome(t, outcomes)
	assert.Equal(t, controller.OutcomeFailed, o.Kind)
	assert.ErrorContains(t, o.Err, "no browser")

	dropFile(t, dir, "second.cob")
	o = nextOutcome(t, outcomes)
	assert.Equal(t, controller.OutcomeNavigated, o.Kind)
	assert.Equal(t, "second.cob", o.File)

	assert.NoError(t, stop())
}

func TestWatch_FileDroppedDuringNavigationIsCarriedOver(t *testing.T) {
	dir := t.TempDir()
	nav := newRecordingNavigator()
	nav.gate = make(chan struct{})
	outcomes, stop := startWatch(t, testApp(t, nav), dir)

	dropFile(t, dir, "first.cob")
	nav.next(t) // first navigation is now held open

	dropFile(t, dir, "second.cob")
	time.Sleep(10 * settle) // let the watcher deliver it to the held controller
	close(nav.gate)

	o := nextOutcome(t, outcomes)
	assert.Equal(t, "first.cob", o.File)
	o = nextOutcome(t, outcomes)
	assert.Equal(t, controller.OutcomeNavigated, o.Kind)
	assert.Equal(t, "second.cob", o.File)

	assert.NoError(t, stop())
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := watch(testApp(t, newRecordingNavigator()), filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}
