// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transport talks to the COBOL conversion backend: it submits one
// source file per call and fetches finished conversions.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/cobol-lens/internal/httputil"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

const (
	// FieldName is the multipart field that carries the uploaded file.
	FieldName = "file"

	uploadPath  = "/upload"
	resultsPath = "/results/"
	apiPath     = "/api/results/"

	// maxResponse caps how much of a JSON response body is read.
	maxResponse = 16 << 20
)

// Client submits files to, and reads results from, one backend endpoint.
type Client struct {
	http     *http.Client
	cfg      types.HTTPConfig
	endpoint string
}

// New creates a Client for cfg.Endpoint. When client is nil one is built
// from cfg.
func New(client *http.Client, cfg types.HTTPConfig) *Client {
	if client == nil {
		client = httputil.NewClient(cfg)
	}
	return &Client{
		http:     client,
		cfg:      cfg,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}
}

// uploadResponse is the JSON body returned by POST /upload.
type uploadResponse struct {
	ConversionID string `json:"conversion_id"`
	Error        string `json:"error"`
}

// Submit uploads file as a multipart body and returns the conversion
// identifier issued by the backend. It makes exactly one request and
// never retries. Failures are *ServerError, *ApplicationError, or
// *ProtocolError; anything else is a transport-level error.
func (c *Client) Submit(ctx context.Context, file types.CandidateFile) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", file.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer src.Close()
		pw.CloseWithError(writeMultipart(mw, file.Name, src))
	}()

	req, err := httputil.NewRequest(ctx, http.MethodPost, c.endpoint+uploadPath, pr, c.cfg)
	if err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return "", fmt.Errorf("uploading %s: %w", file.Name, err)
	}
	defer httputil.DrainAndClose(resp)

	var body uploadResponse
	if err := decode(resp, &body, func() string { return body.Error }); err != nil {
		return "", err
	}
	if body.Error != "" {
		return "", &ApplicationError{Message: body.Error}
	}
	if body.ConversionID == "" {
		return "", &ProtocolError{Reason: ReasonMissingID}
	}
	return body.ConversionID, nil
}

func writeMultipart(mw *multipart.Writer, name string, src io.Reader) error {
	part, err := mw.CreateFormFile(FieldName, name)
	if err != nil {
		return fmt.Errorf("creating form part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying %s: %w", name, err)
	}
	return mw.Close()
}

// resultsResponse is the JSON body returned by GET /api/results/{id}.
type resultsResponse struct {
	types.ConversionResult
	Error string `json:"error"`
}

// FetchResults retrieves a finished conversion by identifier.
func (c *Client) FetchResults(ctx context.Context, id string) (types.ConversionResult, error) {
	req, err := httputil.NewRequest(ctx, http.MethodGet, c.endpoint+apiPath+url.PathEscape(id), nil, c.cfg)
	if err != nil {
		return types.ConversionResult{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.ConversionResult{}, fmt.Errorf("fetching results %s: %w", id, err)
	}
	defer httputil.DrainAndClose(resp)

	var body resultsResponse
	if err := decode(resp, &body, func() string { return body.Error }); err != nil {
		return types.ConversionResult{}, err
	}
	if body.Error != "" {
		return types.ConversionResult{}, &ApplicationError{Message: body.Error}
	}
	result := body.ConversionResult
	result.ID = id
	return result, nil
}

// decode classifies resp by status and unmarshals a success body into v.
// For error statuses the body is parsed on a best-effort basis and detail
// reads the backend's error text out of v.
func decode(resp *http.Response, v any, detail func() string) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if !httputil.IsSuccess(resp.StatusCode) {
		se := &ServerError{Status: resp.StatusCode}
		if err == nil && json.Unmarshal(data, v) == nil {
			se.Detail = detail()
		}
		return se
	}
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ProtocolError{Reason: fmt.Sprintf("malformed response body: %v", err)}
	}
	return nil
}

// ResultsPath returns the navigation target for a conversion.
func ResultsPath(id string) string {
	return resultsPath + url.PathEscape(id)
}

// ResolveURL turns a site-relative path into an absolute URL on the
// backend endpoint.
func (c *Client) ResolveURL(path string) string {
	return c.endpoint + path
}

// ResultsURL returns the absolute results page URL for a conversion.
func (c *Client) ResultsURL(id string) string {
	return c.ResolveURL(ResultsPath(id))
}
