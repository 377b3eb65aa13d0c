// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser opens URLs with the desktop's default web browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches a URL in a browser.
type Opener interface {
	// Name returns the launcher binary (e.g. "xdg-open").
	Name() string

	// Available reports whether the launcher exists on PATH.
	Available() bool

	// Open hands url to the launcher.
	Open(url string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// launcher implements Opener for one binary. The platforms differ only in
// the binary and any arguments placed before the URL.
type launcher struct {
	bin  string
	args []string
	exec executor
}

func (l *launcher) Name() string { return l.bin }

func (l *launcher) Available() bool {
	_, err := l.exec.LookPath(l.bin)
	return err == nil
}

func (l *launcher) Open(url string) error {
	args := append(append([]string{}, l.args...), url)
	if err := l.exec.Run(l.bin, args...); err != nil {
		return fmt.Errorf("opening %s with %s: %w", url, l.bin, err)
	}
	return nil
}

// candidates lists launchers for goos in preference order.
func candidates(goos string, exec executor) []*launcher {
	switch goos {
	case "darwin":
		return []*launcher{{bin: "open", exec: exec}}
	case "windows":
		return []*launcher{{bin: "rundll32", args: []string{"url.dll,FileProtocolHandler"}, exec: exec}}
	default:
		return []*launcher{
			{bin: "xdg-open", exec: exec},
			{bin: "wslview", exec: exec},
		}
	}
}

var defaultExec = &osExecutor{}

// Detect returns the first available launcher for this platform.
func Detect() (Opener, error) {
	return detect(runtime.GOOS, defaultExec)
}

func detect(goos string, exec executor) (Opener, error) {
	cands := candidates(goos, exec)
	names := make([]string, 0, len(cands))
	for _, l := range cands {
		if l.Available() {
			return l, nil
		}
		names = append(names, l.bin)
	}
	return nil, fmt.Errorf("no browser launcher available: tried %s", strings.Join(names, ", "))
}
