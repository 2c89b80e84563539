package cmd

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"mc-launcher/apperr"
	"mc-launcher/identity"
	"mc-launcher/skin"
)

func testSkin(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestApplySkin(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	dir := t.TempDir()
	storage := &skin.LocalStorage{Dir: dir}

	id, format, err := applySkin(ctx, a.identities, storage, "Steve", testSkin(t, 64, 32), identity.SkinSlim)
	if err != nil {
		t.Fatalf("applySkin failed: %v", err)
	}
	if format != skin.Legacy {
		t.Errorf("format = %s, want legacy", format)
	}
	if id.SkinModel != identity.SkinSlim || id.SkinURL == "" {
		t.Errorf("unexpected identity %+v", id)
	}
	if _, err := os.Stat(filepath.Join(dir, "Steve.png")); err != nil {
		t.Errorf("skin file not written: %v", err)
	}
}

func TestApplySkinRejectsBeforeStoring(t *testing.T) {
	tests := []struct {
		name     string
		username string
		data     []byte
		model    string
	}{
		{"bad username", "x", nil, ""},
		{"bad model", "Steve", nil, "wide"},
		{"bad dimensions", "Steve", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			dir := t.TempDir()
			data := tt.data
			if data == nil {
				data = testSkin(t, 32, 32)
			}
			_, _, err := applySkin(context.Background(), a.identities, &skin.LocalStorage{Dir: dir}, tt.username, data, tt.model)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("nothing should be stored, found %d files", len(entries))
			}
			if _, ok, _ := a.identities.Find(context.Background(), tt.username); ok {
				t.Error("identity should not be created")
			}
		})
	}
}
