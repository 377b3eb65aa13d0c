// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/cobol-lens/internal/controller"
	"github.com/pdiddy/cobol-lens/internal/dropzone"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Submit every file placed in a drop directory",
	Long: `Watch turns a directory into a drop target. A file appearing in the
directory highlights the target; once it has not changed for --watch-settle it
is validated and uploaded. Files arriving while an upload is in flight are
ignored. After each finished conversion the target is reset and waits for the
next file. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// relay forwards drop gestures to the current controller. Gestures that
// reach a controller after it has left its page are held for its
// successor, together with anything the old controller left unhandled.
type relay struct {
	in   chan controller.Event
	next chan *controller.Controller
	stop chan struct{}
}

func newRelay() *relay {
	return &relay{
		in:   make(chan controller.Event),
		next: make(chan *controller.Controller),
		stop: make(chan struct{}),
	}
}

func (r *relay) DragEnter()                  { r.push(controller.DragEntered{}) }
func (r *relay) DragLeave()                  { r.push(controller.DragLeft{}) }
func (r *relay) Drop(f *types.CandidateFile) { r.push(controller.FileDropped{File: f}) }

func (r *relay) push(ev controller.Event) {
	select {
	case r.in <- ev:
	case <-r.stop:
	}
}

// forward delivers gestures to cur and each successor handed over through
// r.next until ctx is cancelled.
func (r *relay) forward(ctx context.Context, cur *controller.Controller) {
	defer close(r.stop)

	var held []controller.Event
	for {
		for len(held) > 0 && cur.Send(held[0]) {
			held = held[1:]
		}
		select {
		case <-ctx.Done():
			return
		case ev := <-r.in:
			held = append(held, ev)
		case next := <-r.next:
			held = append(cur.Unhandled(), held...)
			cur = next
		}
	}
}

// watch starts watching dir and returns the loop serving it. The loop runs
// controllers back to back until ctx is cancelled. Each controller serves
// one page: after it navigates, or fails to, a fresh one takes over.
func watch(a *app, dir string, report func(controller.Outcome)) (func(context.Context) error, error) {
	r := newRelay()
	w, err := dropzone.New(dir, a.cfg.WatchSettle, r, a.log)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return serveDropTarget(ctx, a, w, r, report)
	}, nil
}

func serveDropTarget(ctx context.Context, a *app, w *dropzone.Watcher, r *relay, report func(controller.Outcome)) error {
	cur := a.newController(report)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(ctx) })
	g.Go(func() error {
		r.forward(ctx, cur)
		return nil
	})
	g.Go(func() error {
		for {
			err := cur.Run(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				a.log.Error(ctx, "navigation failed", "error", err)
			}
			next := a.newController(report)
			select {
			case r.next <- next:
			case <-ctx.Done():
				return ctx.Err()
			}
			cur = next
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	report := func(o controller.Outcome) {
		switch o.Kind {
		case controller.OutcomeNavigated:
			a.log.Info(cmd.Context(), "conversion finished", "conversion_id", o.ConversionID)
		case controller.OutcomeFailed:
			a.log.Warn(cmd.Context(), "upload failed", "file", o.File, "error", o.Err)
		case controller.OutcomeRejected:
			a.log.Warn(cmd.Context(), "file rejected", "file", o.File)
		}
	}

	run, err := watch(a, args[0], report)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for .cob and .txt files\n", args[0])
	return run(cmd.Context())
}
