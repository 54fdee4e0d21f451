// Package npm provides a packument client for npm registries.
package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/git-pkgs/outdated/client"
)

const (
	// DefaultURL is the public npm registry.
	DefaultURL = "https://registry.npmjs.org"

	// corgiAccept requests the abbreviated packument format, which omits
	// per-version metadata like homepage.
	corgiAccept = "application/vnd.npm.install-v1+json"

	fullAccept = "application/json"
)

// Packument is the registry document listing every published version of a
// package along with its dist-tags.
type Packument struct {
	Name     string               `json:"name"`
	DistTags map[string]string    `json:"dist-tags"`
	Versions map[string]*Manifest `json:"versions"`
	Time     map[string]string    `json:"time"`
}

// Manifest is the metadata for one published version.
type Manifest struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Homepage   any    `json:"homepage"`
	Deprecated string `json:"deprecated"`
	Dist       struct {
		Tarball   string `json:"tarball"`
		Integrity string `json:"integrity"`
	} `json:"dist"`
}

// HomepageURL returns the manifest homepage, tolerating the string-or-array
// shapes found in the wild.
func (m *Manifest) HomepageURL() string {
	return extractString(m.Homepage)
}

// PackumentOptions control how a packument is fetched.
type PackumentOptions struct {
	// FullMetadata requests the full packument instead of the abbreviated
	// (corgi) format.
	FullMetadata bool

	// PreferOnline bypasses intermediate caches.
	PreferOnline bool
}

// Registry fetches packuments from an npm-compatible registry.
type Registry struct {
	baseURL string
	getter  client.Getter
}

// New creates a registry client. If baseURL is empty the public npm registry
// is used; if getter is nil a default retrying client is used.
func New(baseURL string, getter client.Getter) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if getter == nil {
		getter = client.DefaultClient()
	}
	return &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		getter:  getter,
	}
}

// BaseURL returns the registry base URL.
func (r *Registry) BaseURL() string {
	return r.baseURL
}

// Packument retrieves the packument for a specifier.
// 404 responses map to *NotFoundError and 403 responses to *ForbiddenError;
// other failures are returned as-is.
func (r *Registry) Packument(ctx context.Context, spec *Spec, opts PackumentOptions) (*Packument, error) {
	fetchURL := fmt.Sprintf("%s/%s", r.baseURL, url.PathEscape(spec.Name))

	headers := []client.Header{{Name: "Accept", Value: corgiAccept}}
	if opts.FullMetadata {
		headers[0].Value = fullAccept
	}
	if opts.PreferOnline {
		headers = append(headers, client.Header{Name: "Cache-Control", Value: "no-cache"})
	}

	var p Packument
	if err := r.getter.GetJSON(ctx, fetchURL, &p, headers...); err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) {
			switch {
			case httpErr.IsNotFound():
				return nil, &NotFoundError{Name: spec.Name}
			case httpErr.IsForbidden():
				return nil, &ForbiddenError{Name: spec.Name}
			}
		}
		return nil, err
	}

	if p.Name == "" {
		p.Name = spec.Name
	}
	return &p, nil
}

func extractString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if arr, ok := v.([]any); ok && len(arr) > 0 {
		if s, ok := arr[0].(string); ok {
			return s
		}
	}
	return ""
}
