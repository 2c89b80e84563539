package mojang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mc-launcher/apperr"
	"mc-launcher/config"
)

const (
	defaultTimeout = 5 * time.Second
	maxSkinBytes   = 1 << 20
)

// Client talks to the version manifest and the skin/avatar service.
type Client struct {
	ManifestURL string
	SkinBaseURL string
	UserAgent   string
	HTTPClient  *http.Client
}

// NewClient creates a client using the provided configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("USERAGENT is not configured")
	}
	return &Client{
		ManifestURL: cfg.ManifestURL,
		SkinBaseURL: strings.TrimSuffix(cfg.SkinBaseURL, "/"),
		UserAgent:   cfg.UserAgent,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// statusError is returned for non-2xx responses.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed: status %d, body: %s", e.Code, e.Body)
}

func (c *Client) makeRequest(ctx context.Context, fullURL string, target interface{}, isBinary bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.UserAgent)
	if !isBinary {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "image/png")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return resp, &statusError{Code: resp.StatusCode, Body: string(bodyBytes)}
	}

	if target != nil && !isBinary {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return resp, fmt.Errorf("%w: failed to decode json response: %v", apperr.ErrNetwork, err)
		}
	}

	return resp, nil
}

// FetchVersionManifest retrieves the list of published game versions.
func (c *Client) FetchVersionManifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	if _, err := c.makeRequest(ctx, c.ManifestURL, &m, false); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: version manifest: %v", apperr.ErrNetwork, err)
		}
		return nil, fmt.Errorf("failed to fetch version manifest: %w", err)
	}
	return &m, nil
}

// AvatarURL is the head image of username at size pixels.
func (c *Client) AvatarURL(username string, size int) string {
	return fmt.Sprintf("%s/avatar/%s/%d", c.SkinBaseURL, url.PathEscape(username), size)
}

// SkinURL is the full skin texture of username.
func (c *Client) SkinURL(username string) string {
	return fmt.Sprintf("%s/skin/%s", c.SkinBaseURL, url.PathEscape(username))
}

// FetchSkin downloads the skin texture of username. An unknown user yields
// ErrNotFound.
func (c *Client) FetchSkin(ctx context.Context, username string) ([]byte, error) {
	resp, err := c.makeRequest(ctx, c.SkinURL(username), nil, true)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			if se.Code == http.StatusNotFound {
				return nil, fmt.Errorf("%w: skin not found for this user", apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("%w: skin fetch: %v", apperr.ErrNetwork, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSkinBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read skin: %v", apperr.ErrNetwork, err)
	}
	return data, nil
}

// Manifest is the published version catalog.
type Manifest struct {
	Latest   Latest    `json:"latest"`
	Versions []Version `json:"versions"`
}

type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Version is one entry of the manifest.
type Version struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // release, snapshot, old_beta, old_alpha
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
}

// Filter returns the versions of the given type in manifest order. An empty
// type returns every version.
func (m *Manifest) Filter(versionType string) []Version {
	if versionType == "" {
		return m.Versions
	}
	out := []Version{}
	for _, v := range m.Versions {
		if v.Type == versionType {
			out = append(out, v)
		}
	}
	return out
}
