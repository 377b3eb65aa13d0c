// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package navigate implements the ways a finished upload can leave for its
// results: print the absolute URL, open it in a browser, or fetch the
// conversion and write it to disk.
package navigate

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pdiddy/cobol-lens/internal/browser"
	"github.com/pdiddy/cobol-lens/internal/controller"
	"github.com/pdiddy/cobol-lens/internal/results"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

const resultsPrefix = "/results/"

// Resolver turns a site-relative path into an absolute URL.
type Resolver interface {
	ResolveURL(path string) string
}

// Printer writes the absolute results URL to an output stream.
type Printer struct {
	resolver Resolver
	out      io.Writer
}

// NewPrinter creates a Printer.
func NewPrinter(r Resolver, out io.Writer) *Printer {
	return &Printer{resolver: r, out: out}
}

// Navigate prints the resolved target.
func (p *Printer) Navigate(_ context.Context, target string) error {
	_, err := fmt.Fprintln(p.out, p.resolver.ResolveURL(target))
	return err
}

// Browser opens the results page with the desktop browser.
type Browser struct {
	resolver Resolver
	opener   browser.Opener
}

// NewBrowser creates a Browser.
func NewBrowser(r Resolver, o browser.Opener) *Browser {
	return &Browser{resolver: r, opener: o}
}

// Navigate hands the resolved target to the launcher.
func (b *Browser) Navigate(_ context.Context, target string) error {
	u := b.resolver.ResolveURL(target)
	if err := b.opener.Open(u); err != nil {
		return fmt.Errorf("%s: %w", b.opener.Name(), err)
	}
	return nil
}

// Fetcher retrieves the conversion behind the target and exports it.
type Fetcher struct {
	source results.Fetcher
	dir    string
	out    io.Writer
}

// NewFetcher creates a Fetcher writing under dir.
func NewFetcher(source results.Fetcher, dir string, out io.Writer) *Fetcher {
	return &Fetcher{source: source, dir: dir, out: out}
}

// Navigate fetches and exports the conversion named by target.
func (f *Fetcher) Navigate(ctx context.Context, target string) error {
	id, err := ConversionID(target)
	if err != nil {
		return err
	}
	_, err = results.FetchAndExport(ctx, f.source, id, f.dir, f.out)
	return err
}

// ConversionID extracts the identifier from a results path.
func ConversionID(target string) (string, error) {
	raw, ok := strings.CutPrefix(target, resultsPrefix)
	if !ok || raw == "" {
		return "", fmt.Errorf("not a results path: %q", target)
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %q: %w", target, err)
	}
	return id, nil
}

// New selects the navigator for mode.
func New(mode types.NavigateMode, r Resolver, source results.Fetcher, dir string, out io.Writer) (controller.Navigator, error) {
	switch mode {
	case types.NavigatePrint, "":
		return NewPrinter(r, out), nil
	case types.NavigateBrowser:
		o, err := browser.Detect()
		if err != nil {
			return nil, err
		}
		return NewBrowser(r, o), nil
	case types.NavigateFetch:
		return NewFetcher(source, dir, out), nil
	default:
		return nil, fmt.Errorf("unknown navigate mode %q", mode)
	}
}
