// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package navigate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cobol-lens/pkg/types"
)

type prefixResolver string

func (p prefixResolver) ResolveURL(path string) string { return string(p) + path }

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) Name() string        { return "fake-open" }
func (f *fakeOpener) Available() bool     { return true }
func (f *fakeOpener) Open(u string) error { f.opened = append(f.opened, u); return f.err }

type fakeSource struct {
	ids []string
	err error
}

func (f *fakeSource) FetchResults(_ context.Context, id string) (types.ConversionResult, error) {
	f.ids = append(f.ids, id)
	if f.err != nil {
		return types.ConversionResult{}, f.err
	}
	return types.ConversionResult{ID: id, Pseudocode: "p", Explanation: "e"}, nil
}

const base = prefixResolver("http://127.0.0.1:5000")

func TestPrinter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewPrinter(base, &out).Navigate(context.Background(), "/results/abc123"))
	assert.Equal(t, "http://127.0.0.1:5000/results/abc123\n", out.String())
}

func TestBrowser(t *testing.T) {
	o := &fakeOpener{}
	require.NoError(t, NewBrowser(base, o).Navigate(context.Background(), "/results/abc123"))
	assert.Equal(t, []string{"http://127.0.0.1:5000/results/abc123"}, o.opened)
}

func TestBrowser_OpenError(t *testing.T) {
	o := &fakeOpener{err: errors.New("exit status 3")}
	err := NewBrowser(base, o).Navigate(context.Background(), "/results/abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake-open")
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestFetcher(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{}
	var out bytes.Buffer

	require.NoError(t, NewFetcher(src, dir, &out).Navigate(context.Background(), "/results/abc123"))

	assert.Equal(t, []string{"abc123"}, src.ids)
	_, err := os.Stat(filepath.Join(dir, "abc123", "result.yaml"))
	assert.NoError(t, err)
}

func TestFetcher_Error(t *testing.T) {
	src := &fakeSource{err: errors.New("Results not found or expired")}
	var out bytes.Buffer
	err := NewFetcher(src, t.TempDir(), &out).Navigate(context.Background(), "/results/abc123")
	assert.EqualError(t, err, "Results not found or expired")
}

func TestConversionID(t *testing.T) {
	tests := []struct {
		target  string
		want    string
		wantErr bool
	}{
		{target: "/results/abc123", want: "abc123"},
		{target: "/results/a%2Fb", want: "a/b"},
		{target: "/results/", wantErr: true},
		{target: "/upload", wantErr: true},
		{target: "/results/%zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := ConversionID(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	var out bytes.Buffer

	n, err := New(types.NavigatePrint, base, &fakeSource{}, t.TempDir(), &out)
	require.NoError(t, err)
	assert.IsType(t, &Printer{}, n)

	n, err = New(types.NavigateFetch, base, &fakeSource{}, t.TempDir(), &out)
	require.NoError(t, err)
	assert.IsType(t, &Fetcher{}, n)

	_, err = New("carrier-pigeon", base, &fakeSource{}, t.TempDir(), &out)
	assert.Error(t, err)
}
