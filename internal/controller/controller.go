// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller drives a single-file upload from user input to the
// results location.
//
// The interaction logic lives in Transition, a pure function from state and
// event to the next state and a list of effects. Controller owns that state
// and runs an event loop that performs the effects against a View, a
// Notifier, a Navigator, a progress Ticker, and an upload Submitter. Timer
// ticks and the upload result arrive as events on the same loop, so no
// state is shared between goroutines.
//
// File events that arrive while an upload is in flight are ignored.
package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/cobol-lens/internal/logging"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

// View renders the upload display.
type View interface {
	Highlight(on bool)
	ShowFile(name string)
	ShowProgress()
	SetProgress(value int)
	HideProgress()
}

// Notifier shows user-facing notices.
type Notifier interface {
	// Reject shows the validation notice and returns once the user has
	// acknowledged it.
	Reject(filename, notice string)

	// Failure shows an upload failure without waiting for the user.
	Failure(message string)
}

// Navigator leaves for the results location, a site-relative path such
// as "/results/abc123".
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// Ticker is the cosmetic progress source.
type Ticker interface {
	Start(onTick func(value int))
	Stop()
}

// Submitter performs one upload and returns the conversion identifier.
type Submitter interface {
	Submit(ctx context.Context, file types.CandidateFile) (string, error)
}

// OutcomeKind classifies how an attempt ended.
type OutcomeKind int

const (
	OutcomeNavigated OutcomeKind = iota
	OutcomeFailed
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNavigated:
		return "navigated"
	case OutcomeFailed:
		return "failed"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome describes the end of one attempt.
type Outcome struct {
	Kind         OutcomeKind
	File         string
	ConversionID string
	Target       string
	Err          error
}

// Options wires a Controller to its collaborators. All fields except
// Logger and OnOutcome are required.
type Options struct {
	View      View
	Notifier  Notifier
	Navigator Navigator
	Ticker    Ticker
	Submitter Submitter
	Logger    logging.Logger

	// OnOutcome, if set, is called from the event loop after each attempt
	// concludes.
	OnOutcome func(Outcome)
}

// eventBuffer bounds how many events may queue before Dispatch blocks.
const eventBuffer = 32

// Controller is the upload state machine runtime. Create one with New and
// start its loop with Run; the input methods may be called from any
// goroutine, before or after Run starts.
type Controller struct {
	opts    Options
	log     logging.Logger
	events  chan Event
	closing chan struct{}
	done    chan struct{}

	// sendMu orders senders against the final drain of events.
	sendMu    sync.RWMutex
	closed    bool
	unhandled []Event

	// Owned by the Run goroutine.
	state        State
	cancelSubmit context.CancelFunc
	leaving      bool
	navErr       error
}

// New creates a Controller.
func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Controller{
		opts:   opts,
		log:    log,
		events:  make(chan Event, eventBuffer),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// DragEnter reports a drag entering the drop target.
func (c *Controller) DragEnter() { c.Dispatch(DragEntered{}) }

// DragLeave reports a drag leaving the drop target.
func (c *Controller) DragLeave() { c.Dispatch(DragLeft{}) }

// Drop reports a file dropped on the drop target.
func (c *Controller) Drop(f *types.CandidateFile) { c.Dispatch(FileDropped{File: f}) }

// Pick reports an explicitly selected file.
func (c *Controller) Pick(f *types.CandidateFile) { c.Dispatch(FilePicked{File: f}) }

// Dispatch queues ev for the event loop. Events sent after Run has
// returned are discarded; discarded file events are logged.
func (c *Controller) Dispatch(ev Event) {
	if !c.Send(ev) {
		if name, ok := fileName(ev); ok {
			c.log.Warn(context.Background(), "event ignored", "reason", "controller stopped", "file", name)
		}
	}
}

// Send queues ev for the event loop and reports whether it was accepted.
// It returns false once Run has started to return; an event accepted
// but not processed by then is available from Unhandled.
func (c *Controller) Send(ev Event) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.events <- ev:
		return true
	case <-c.closing:
		return false
	}
}

// Unhandled returns the drag and file events that were queued but not
// processed when Run returned, in arrival order. It is valid once Done is
// closed.
func (c *Controller) Unhandled() []Event {
	<-c.done
	return c.unhandled
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Run processes events until the user navigates to a results location or
// ctx is cancelled. It returns nil after a successful navigation, the
// navigation error if leaving failed, or ctx.Err(). Run must be called at
// most once.
func (c *Controller) Run(ctx context.Context) error {
	defer c.close()
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
			if c.leaving {
				return c.navErr
			}
		}
	}
}

// close stops accepting events and keeps the input events still queued.
func (c *Controller) close() {
	close(c.closing)

	c.sendMu.Lock()
	c.closed = true
	for drained := false; !drained; {
		select {
		case ev := <-c.events:
			switch ev.(type) {
			case ProgressTicked, UploadSettled:
				continue
			}
			c.unhandled = append(c.unhandled, ev)
			if name, ok := fileName(ev); ok {
				c.log.Info(context.Background(), "file event left unhandled", "file", name)
			}
		default:
			drained = true
		}
	}
	c.sendMu.Unlock()

	close(c.done)
}

func fileName(ev Event) (string, bool) {
	switch e := ev.(type) {
	case FileDropped:
		if e.File != nil {
			return e.File.Name, true
		}
	case FilePicked:
		if e.File != nil {
			return e.File.Name, true
		}
	}
	return "", false
}

func (c *Controller) handle(ctx context.Context, ev Event) {
	next, effects := Transition(c.state, ev)
	if next.Status() != c.state.Status() {
		c.log.Debug(ctx, "state change", "from", c.state.Status(), "to", next.Status())
	}
	c.state = next
	for _, eff := range effects {
		c.apply(ctx, eff)
	}
}

func (c *Controller) apply(ctx context.Context, eff Effect) {
	switch e := eff.(type) {
	case Highlight:
		c.opts.View.Highlight(e.On)
	case ShowFile:
		c.opts.View.ShowFile(e.Name)
	case ShowProgress:
		c.opts.View.ShowProgress()
	case HideProgress:
		c.opts.View.HideProgress()
	case SetProgress:
		c.opts.View.SetProgress(e.Value)

	case StartProgress:
		session := e.Session
		c.opts.Ticker.Start(func(v int) {
			c.Dispatch(ProgressTicked{Session: session, Value: v})
		})
	case StopProgress:
		c.opts.Ticker.Stop()

	case Submit:
		c.submit(ctx, e)

	case Reject:
		c.log.Info(ctx, "file rejected", "file", e.Filename)
		c.opts.Notifier.Reject(e.Filename, e.Notice)
		c.report(Outcome{Kind: OutcomeRejected, File: e.Filename})

	case Fail:
		c.releaseSubmit()
		c.log.Warn(ctx, "upload failed", "file", e.File, "error", e.Err)
		c.opts.Notifier.Failure(e.Message)
		c.report(Outcome{Kind: OutcomeFailed, File: e.File, Err: e.Err})

	case Navigate:
		c.releaseSubmit()
		c.navigate(ctx, e)

	case Ignore:
		c.log.Warn(ctx, "event ignored", "reason", e.Reason)
	}
}

func (c *Controller) submit(ctx context.Context, e Submit) {
	subCtx, cancel := context.WithCancel(ctx)
	c.cancelSubmit = cancel

	c.log.Info(ctx, "upload started", "file", e.File.Name, "session", e.Session)
	go func() {
		defer cancel()
		id, err := c.opts.Submitter.Submit(subCtx, e.File)
		c.Dispatch(UploadSettled{Session: e.Session, ConversionID: id, Err: err})
	}()
}

func (c *Controller) navigate(ctx context.Context, e Navigate) {
	c.leaving = true
	c.log.Info(ctx, "conversion ready", "conversion_id", e.ConversionID, "target", e.Target)

	if err := c.opts.Navigator.Navigate(ctx, e.Target); err != nil {
		c.navErr = fmt.Errorf("navigating to %s: %w", e.Target, err)
		c.log.Error(ctx, "navigation failed", "error", err)
		c.opts.Notifier.Failure("Navigation failed: " + err.Error())
		c.report(Outcome{Kind: OutcomeFailed, ConversionID: e.ConversionID, Target: e.Target, Err: c.navErr})
		return
	}
	c.report(Outcome{Kind: OutcomeNavigated, ConversionID: e.ConversionID, Target: e.Target})
}

func (c *Controller) report(o Outcome) {
	if o.File == "" && c.state.Session != nil {
		o.File = c.state.Session.File.Name
	}
	if c.opts.OnOutcome != nil {
		c.opts.OnOutcome(o)
	}
}

func (c *Controller) releaseSubmit() {
	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}
}

func (c *Controller) shutdown() {
	c.opts.Ticker.Stop()
	c.releaseSubmit()
}
