package adapters

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-resty/resty/v2"

	"modpm/internal/ports"
	"modpm/internal/shared"
	"modpm/internal/types"
)

const defaultRegistryTimeout = 60 * time.Second

// HTTPRegistryAdapter talks to one package registry over its REST API:
// GET /api/find/{name}/{selector} resolves a selector to a concrete
// version, GET /api/download/{name}/{version}/{filename} streams the
// distribution archive.
type HTTPRegistryAdapter struct {
	name    string
	baseURL string
	client  *resty.Client
}

func NewHTTPRegistryAdapter(name string, baseURL string, username string, password string, timeoutSec int) *HTTPRegistryAdapter {
	timeout := defaultRegistryTimeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	if username != "" {
		client.SetBasicAuth(username, password)
	}
	return &HTTPRegistryAdapter{name: name, baseURL: baseURL, client: client}
}

func (a *HTTPRegistryAdapter) Name() string    { return a.name }
func (a *HTTPRegistryAdapter) BaseURL() string { return a.baseURL }

type findResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Error   string `json:"error"`
}

func (a *HTTPRegistryAdapter) FindPackage(ctx context.Context, name string, selector types.Selector) (types.PackageInfo, error) {
	var body findResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&body).
		SetError(&body).
		SetPathParam("name", name).
		SetPathParam("selector", selector.String()).
		Get("/api/find/{name}/{selector}")
	if err != nil {
		return types.PackageInfo{}, a.transportError("find request failed", err)
	}
	if resp.StatusCode() == 404 || body.Error == "Package not found" {
		return types.PackageInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package %s@%s not found in registry %q", name, selector, a.name))
	}
	if resp.IsError() || body.Error != "" {
		return types.PackageInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("registry %q error: %s", a.name, body.Error)).
			WithCause(shared.HTTPStatusError(resp.StatusCode(), resp.Request.URL))
	}
	if body.Name == "" || body.Version == "" {
		return types.PackageInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("registry %q returned an incomplete package record", a.name))
	}
	return types.PackageInfo{Name: body.Name, Version: body.Version}, nil
}

func (a *HTTPRegistryAdapter) Download(ctx context.Context, name string, version string) (io.ReadCloser, string, error) {
	archiveName := shared.PackageArchiveName(name, version)
	resp, err := a.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetPathParam("name", name).
		SetPathParam("version", version).
		SetPathParam("filename", archiveName).
		Get("/api/download/{name}/{version}/{filename}")
	if err != nil {
		return nil, "", a.transportError("download request failed", err)
	}
	if resp.IsError() {
		resp.RawBody().Close()
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("download failed for %s@%s", name, version)).
			WithCause(shared.HTTPStatusError(resp.StatusCode(), resp.Request.URL))
	}
	filename := archiveName
	if disposition := resp.Header().Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}
	return resp.RawBody(), filename, nil
}

func (a *HTTPRegistryAdapter) transportError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("registry %q: %s", a.name, msg)).
		WithCause(cause)
}

var _ ports.RegistryPort = (*HTTPRegistryAdapter)(nil)
