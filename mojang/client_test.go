package mojang

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mc-launcher/apperr"
	"mc-launcher/config"
)

const manifestJSON = `{
  "latest": {"release": "1.21.1", "snapshot": "24w33a"},
  "versions": [
    {"id": "24w33a", "type": "snapshot", "url": "https://example.invalid/24w33a.json", "time": "2024-08-15T12:00:00+00:00", "releaseTime": "2024-08-15T11:00:00+00:00"},
    {"id": "1.21.1", "type": "release", "url": "https://example.invalid/1.21.1.json", "time": "2024-08-08T12:00:00+00:00", "releaseTime": "2024-08-08T11:00:00+00:00"},
    {"id": "1.20.4", "type": "release", "url": "https://example.invalid/1.20.4.json", "time": "2023-12-07T12:00:00+00:00", "releaseTime": "2023-12-07T11:00:00+00:00"}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "mc-launcher/test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(manifestJSON))
	})
	mux.HandleFunc("/skin/Steve", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG fake"))
	})
	mux.HandleFunc("/skin/Broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, base string) *Client {
	t.Helper()
	c, err := NewClient(config.Config{
		UserAgent:   "mc-launcher/test",
		ManifestURL: base + "/manifest.json",
		SkinBaseURL: base + "/",
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClientRequiresUserAgent(t *testing.T) {
	if _, err := NewClient(config.Config{}); err == nil {
		t.Error("expected error without user agent")
	}
}

func TestFetchVersionManifest(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)

	m, err := c.FetchVersionManifest(context.Background())
	if err != nil {
		t.Fatalf("FetchVersionManifest failed: %v", err)
	}
	if m.Latest.Release != "1.21.1" || m.Latest.Snapshot != "24w33a" {
		t.Errorf("unexpected latest %+v", m.Latest)
	}
	if len(m.Versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(m.Versions))
	}

	releases := m.Filter("release")
	if len(releases) != 2 || releases[0].ID != "1.21.1" || releases[1].ID != "1.20.4" {
		t.Errorf("unexpected releases %+v", releases)
	}
	if len(m.Filter("old_alpha")) != 0 {
		t.Error("expected no alpha versions")
	}
	if len(m.Filter("")) != 3 {
		t.Error("empty filter should return everything")
	}
	if releases[0].ReleaseTime.Year() != 2024 {
		t.Errorf("unexpected release time %s", releases[0].ReleaseTime)
	}
}

func TestFetchVersionManifestNetworkError(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)
	srv.Close()

	_, err := c.FetchVersionManifest(context.Background())
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if apperr.UserMessage(err) != apperr.NetworkMessage {
		t.Errorf("expected generic message, got %q", apperr.UserMessage(err))
	}
}

func TestURLs(t *testing.T) {
	c := newTestClient(t, "https://mc-heads.net")
	if got := c.AvatarURL("Steve", 64); got != "https://mc-heads.net/avatar/Steve/64" {
		t.Errorf("AvatarURL = %s", got)
	}
	if got := c.SkinURL("Alex"); got != "https://mc-heads.net/skin/Alex" {
		t.Errorf("SkinURL = %s", got)
	}
}

func TestFetchSkin(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	data, err := c.FetchSkin(ctx, "Steve")
	if err != nil {
		t.Fatalf("FetchSkin failed: %v", err)
	}
	if string(data) != "\x89PNG fake" {
		t.Errorf("unexpected body %q", data)
	}

	if _, err := c.FetchSkin(ctx, "Nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := c.FetchSkin(ctx, "Broken"); !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("expected network error for 502, got %v", err)
	}
}
