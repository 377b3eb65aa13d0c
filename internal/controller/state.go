// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"github.com/pdiddy/cobol-lens/internal/progress"
	"github.com/pdiddy/cobol-lens/internal/transport"
	"github.com/pdiddy/cobol-lens/internal/validate"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

// Event is an input to the state machine.
type Event interface{ event() }

// DragEntered reports a pointer carrying a file entering the drop target.
type DragEntered struct{}

// DragLeft reports the pointer leaving the drop target without dropping.
type DragLeft struct{}

// FileDropped reports a drop on the drop target. File is nil when the
// drop carried no file.
type FileDropped struct{ File *types.CandidateFile }

// FilePicked reports an explicit file selection.
type FilePicked struct{ File *types.CandidateFile }

// ProgressTicked carries a cosmetic progress value for a session.
type ProgressTicked struct {
	Session uint64
	Value   int
}

// UploadSettled is the single resolution of a session's upload.
type UploadSettled struct {
	Session      uint64
	ConversionID string
	Err          error
}

func (DragEntered) event()    {}
func (DragLeft) event()       {}
func (FileDropped) event()    {}
func (FilePicked) event()     {}
func (ProgressTicked) event() {}
func (UploadSettled) event()  {}

// Effect is a side effect requested by the state machine. The Controller
// carries effects out in the order they are returned.
type Effect interface{ effect() }

type (
	// Highlight toggles the drop target affordance.
	Highlight struct{ On bool }
	// Reject shows the blocking validation notice.
	Reject struct {
		Filename string
		Notice   string
	}
	// ShowFile displays the selected filename.
	ShowFile struct{ Name string }
	// ShowProgress reveals the progress display.
	ShowProgress struct{}
	// HideProgress hides the progress display.
	HideProgress struct{}
	// SetProgress sets the displayed progress value.
	SetProgress struct{ Value int }
	// StartProgress starts the cosmetic progress reporter for a session.
	StartProgress struct{ Session uint64 }
	// StopProgress stops the progress reporter.
	StopProgress struct{}
	// Submit starts the upload of File for a session.
	Submit struct {
		Session uint64
		File    types.CandidateFile
	}
	// Navigate leaves for the results location.
	Navigate struct {
		Target       string
		ConversionID string
	}
	// Fail shows the non-blocking failure notice.
	Fail struct {
		File    string
		Err     error
		Message string
	}
	// Ignore records an event that was deliberately dropped.
	Ignore struct{ Reason string }
)

func (Highlight) effect()     {}
func (Reject) effect()        {}
func (ShowFile) effect()      {}
func (ShowProgress) effect()  {}
func (HideProgress) effect()  {}
func (SetProgress) effect()   {}
func (StartProgress) effect() {}
func (StopProgress) effect()  {}
func (Submit) effect()        {}
func (Navigate) effect()      {}
func (Fail) effect()          {}
func (Ignore) effect()        {}

// State is the controller's complete interaction state.
type State struct {
	// Highlighted reports whether the drop target affordance is shown.
	Highlighted bool

	// Session is the active upload, or nil when idle.
	Session *types.UploadSession

	// lastID is the identifier of the most recently created session.
	lastID uint64
}

// Status returns the status of the active session, or StatusIdle.
func (s State) Status() types.Status {
	if s.Session == nil {
		return types.StatusIdle
	}
	return s.Session.Status
}

// Transition applies ev to s and returns the next state with the effects
// to perform. It never mutates s.
func Transition(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case DragEntered:
		if s.Highlighted {
			return s, nil
		}
		s.Highlighted = true
		return s, []Effect{Highlight{On: true}}

	case DragLeft:
		if !s.Highlighted {
			return s, nil
		}
		s.Highlighted = false
		return s, []Effect{Highlight{On: false}}

	case FileDropped:
		var effects []Effect
		if s.Highlighted {
			s.Highlighted = false
			effects = append(effects, Highlight{On: false})
		}
		next, more := acceptFile(s, ev.File)
		return next, append(effects, more...)

	case FilePicked:
		return acceptFile(s, ev.File)

	case ProgressTicked:
		if !s.current(ev.Session) || ev.Value <= s.Session.Progress {
			return s, nil
		}
		sess := *s.Session
		sess.Progress = min(ev.Value, progress.Max)
		s.Session = &sess
		return s, []Effect{SetProgress{Value: sess.Progress}}

	case UploadSettled:
		if !s.current(ev.Session) {
			return s, []Effect{Ignore{Reason: "stale upload result"}}
		}
		return settle(s, ev)
	}
	return s, nil
}

// current reports whether id names the session that is uploading.
func (s State) current(id uint64) bool {
	return s.Session != nil && s.Session.ID == id && s.Session.Status == types.StatusUploading
}

func acceptFile(s State, f *types.CandidateFile) (State, []Effect) {
	if f == nil {
		return s, nil
	}
	switch s.Status() {
	case types.StatusUploading, types.StatusSucceeded:
		return s, []Effect{Ignore{Reason: "upload already in progress: " + f.Name}}
	}

	// Validating: no session exists until the file passes.
	if !validate.Accepts(f.Name) {
		return s, []Effect{Reject{Filename: f.Name, Notice: validate.RejectionNotice()}}
	}

	s.lastID++
	s.Session = &types.UploadSession{
		ID:     s.lastID,
		Status: types.StatusUploading,
		File:   *f,
	}
	return s, []Effect{
		ShowFile{Name: f.Name},
		ShowProgress{},
		SetProgress{Value: 0},
		StartProgress{Session: s.lastID},
		Submit{Session: s.lastID, File: *f},
	}
}

func settle(s State, ev UploadSettled) (State, []Effect) {
	sess := *s.Session
	sess.Progress = progress.Max
	effects := []Effect{StopProgress{}, SetProgress{Value: progress.Max}}

	err := ev.Err
	if err == nil && ev.ConversionID == "" {
		err = &transport.ProtocolError{Reason: transport.ReasonMissingID}
	}
	if err == nil {
		sess.Status = types.StatusSucceeded
		s.Session = &sess
		return s, append(effects, Navigate{
			Target:       transport.ResultsPath(ev.ConversionID),
			ConversionID: ev.ConversionID,
		})
	}

	// Failed folds straight back to idle.
	s.Session = nil
	return s, append(effects,
		Fail{File: sess.File.Name, Err: err, Message: err.Error()},
		HideProgress{},
		SetProgress{Value: 0},
	)
}
