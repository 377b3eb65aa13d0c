// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terminal

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "[                    ]   0%"},
		{50, "[##########          ]  50%"},
		{100, "[####################] 100%"},
		{140, "[####################] 100%"},
		{-5, "[                    ]   0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bar(tt.value))
	}
}

func TestTerminal_UploadFlowNonInteractive(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""), false)

	term.ShowFile("hello.cob")
	term.ShowProgress()
	term.SetProgress(0)
	term.SetProgress(10)
	term.SetProgress(100)
	term.HideProgress()
	term.SetProgress(0)

	got := out.String()
	assert.Contains(t, got, "Selected file: hello.cob\n")
	assert.Contains(t, got, "Processing your file...\n")
	assert.Contains(t, got, "[##                  ]  10%\n")
	assert.Contains(t, got, "100%\n")
	assert.NotContains(t, got, "\r")
	assert.Equal(t, 3, strings.Count(got, "%\n"), "updates after hiding are not drawn")
}

func TestTerminal_InteractiveRedrawsInPlace(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""), true)

	term.ShowProgress()
	term.SetProgress(30)
	term.HideProgress()

	got := out.String()
	assert.Contains(t, got, "\r[######              ]  30%")
	assert.True(t, strings.HasSuffix(got, "\r\033[K"))
}

func TestTerminal_RejectWaitsWhenInteractive(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("\nleftover")
	term := New(&out, in, true)

	term.Reject("report.CSV", "Only .cob and .txt files are allowed")

	assert.Contains(t, out.String(), "Only .cob and .txt files are allowed (report.CSV)")
	assert.Contains(t, out.String(), "Press Enter to continue...")
	rest, _ := term.in.ReadString('\n')
	assert.Equal(t, "leftover", rest)
}

func TestTerminal_RejectDoesNotBlockNonInteractive(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""), false)

	term.Reject("report.CSV", "Only .cob and .txt files are allowed")
	assert.NotContains(t, out.String(), "Press Enter")
}

func TestTerminal_FailureAndHighlight(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""), false)

	term.Highlight(true)
	term.Highlight(false)
	term.Failure("Server error: 500")

	got := out.String()
	assert.Contains(t, got, "drop target armed")
	assert.Contains(t, got, "drop target idle")
	assert.Contains(t, got, "Processing failed: Server error: 500")
}

func TestTerminal_FailureAfterFullBar(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""), true)

	term.ShowProgress()
	term.SetProgress(100)
	term.Failure("Server error: 500")

	got := out.String()
	assert.NotContains(t, got, "\n\n", "bar line is already ended")
	assert.Contains(t, got, "100%\n")
}

func TestTerminal_FailureEndsOpenBarLine(t *testing.T) {
	var out bytes.Buffer
	term := New(&out, strings.NewReader(""), true)

	term.ShowProgress()
	term.SetProgress(40)
	term.Failure("Server error: 500")

	got := out.String()
	assert.Contains(t, got, " 40%\n")
	assert.NotContains(t, got, "\n\n")
}

func TestIsInteractive_UsesSeam(t *testing.T) {
	orig := isTerminal
	defer func() { isTerminal = orig }()

	isTerminal = func(int) bool { return true }
	assert.True(t, IsInteractive(os.Stdin))

	isTerminal = func(int) bool { return false }
	assert.False(t, IsInteractive(os.Stdin))
}
